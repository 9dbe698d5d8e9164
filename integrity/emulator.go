package integrity

import "strings"

// emulatorRule matches one identifier against a known emulator pattern
type emulatorRule struct {
	field func(DeviceInfo) string
	match func(value string) bool
}

func prefix(p string) func(string) bool   { return func(v string) bool { return strings.HasPrefix(v, p) } }
func contains(s string) func(string) bool { return func(v string) bool { return strings.Contains(v, s) } }
func equals(s string) func(string) bool   { return func(v string) bool { return v == s } }

// Static deny table. It is deliberately narrow: a miss is acceptable, flagging real hardware is not.
var emulatorRules = []emulatorRule{
	{func(d DeviceInfo) string { return d.Fingerprint }, prefix("generic")},
	{func(d DeviceInfo) string { return d.Fingerprint }, prefix("unknown")},
	{func(d DeviceInfo) string { return d.Model }, contains("google_sdk")},
	{func(d DeviceInfo) string { return d.Model }, contains("Emulator")},
	{func(d DeviceInfo) string { return d.Model }, contains("Android SDK built for x86")},
	{func(d DeviceInfo) string { return d.Manufacturer }, contains("Genymotion")},
	{func(d DeviceInfo) string { return d.Product }, equals("google_sdk")},
	{func(d DeviceInfo) string { return d.Product }, contains("sdk_gphone")},
	{func(d DeviceInfo) string { return d.Product }, contains("vbox86p")},
	{func(d DeviceInfo) string { return d.Product }, contains("emulator")},
	{func(d DeviceInfo) string { return d.Product }, contains("simulator")},
	{func(d DeviceInfo) string { return d.Hardware }, contains("goldfish")},
	{func(d DeviceInfo) string { return d.Hardware }, contains("ranchu")},
	{func(d DeviceInfo) string { return d.Hardware }, contains("vbox86")},
	{func(d DeviceInfo) string { return d.Board }, equals("QC_Reference_Phone")},
}

// looksLikeEmulator applies the deny table. Empty identifiers never match.
func looksLikeEmulator(d DeviceInfo) bool {
	for _, rule := range emulatorRules {
		if v := rule.field(d); v != "" && rule.match(v) {
			return true
		}
	}
	return strings.HasPrefix(d.Brand, "generic") && strings.HasPrefix(d.Device, "generic")
}
