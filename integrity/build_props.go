package integrity

import (
	"bufio"
	"bytes"
	"errors"
	"os"
	"strings"
)

const defaultBuildPropPath = "/system/build.prop"

// BuildPropSource reads DeviceInfo from an Android build.prop file.
// A missing file means the host is not an Android image and yields empty identifiers.
type BuildPropSource struct {
	Path string
}

var _ DeviceInfoSource = BuildPropSource{}

func (b BuildPropSource) DeviceInfo() (DeviceInfo, error) {
	props, err := b.props()
	if err != nil {
		return DeviceInfo{}, err
	}
	return DeviceInfo{
		Fingerprint:  props["ro.build.fingerprint"],
		Model:        props["ro.product.model"],
		Manufacturer: props["ro.product.manufacturer"],
		Brand:        props["ro.product.brand"],
		Device:       props["ro.product.device"],
		Product:      props["ro.product.name"],
		Hardware:     props["ro.hardware"],
		Board:        props["ro.product.board"],
	}, nil
}

// BuildTags returns ro.build.tags, or "" when unreadable. Root detection uses it and must not fail on it.
func (b BuildPropSource) BuildTags() string {
	props, err := b.props()
	if err != nil {
		return ""
	}
	return props["ro.build.tags"]
}

func (b BuildPropSource) props() (map[string]string, error) {
	path := b.Path
	if path == "" {
		path = defaultBuildPropPath
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return map[string]string{}, nil
	}
	if err != nil {
		return nil, err
	}
	return parseBuildProps(data), nil
}

func parseBuildProps(data []byte) map[string]string {
	props := make(map[string]string)
	scanner := bufio.NewScanner(bytes.NewReader(data))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		key, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		props[strings.TrimSpace(key)] = strings.TrimSpace(value)
	}
	return props
}
