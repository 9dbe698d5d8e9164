package kv

import "strconv"

// Store is a durable key/value namespace.
// View and Update are linearizable with respect to each other: a View never
// observes a partially applied Update.
type Store interface {
	// View calls fn with the committed values. fn must not retain or mutate them.
	View(fn func(v Values))

	// Update calls fn with a private copy of the values. The copy is persisted and
	// published only if fn returns nil; otherwise the store is left untouched.
	Update(fn func(v Values) error) error
}

// Values holds a namespace's entries. Typed accessors encode everything as strings.
type Values map[string]string

func (v Values) String(key string) (string, bool) {
	s, ok := v[key]
	return s, ok
}

func (v Values) Bool(key string) (bool, bool) {
	s, ok := v[key]
	if !ok {
		return false, false
	}
	b, err := strconv.ParseBool(s)
	if err != nil {
		return false, false
	}
	return b, true
}

func (v Values) Int64(key string) (int64, bool) {
	s, ok := v[key]
	if !ok {
		return 0, false
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}

func (v Values) SetString(key, value string) {
	v[key] = value
}

func (v Values) SetBool(key string, value bool) {
	v[key] = strconv.FormatBool(value)
}

func (v Values) SetInt64(key string, value int64) {
	v[key] = strconv.FormatInt(value, 10)
}

func (v Values) Delete(keys ...string) {
	for _, key := range keys {
		delete(v, key)
	}
}

func (v Values) Clear() {
	for key := range v {
		delete(v, key)
	}
}

// Clone returns an independent copy.
func (v Values) Clone() Values {
	c := make(Values, len(v))
	for key, value := range v {
		c[key] = value
	}
	return c
}

// GetString reads a single string key.
func GetString(s Store, key string) (value string, ok bool) {
	s.View(func(v Values) { value, ok = v.String(key) })
	return value, ok
}

// GetBool reads a single boolean key.
func GetBool(s Store, key string) (value bool, ok bool) {
	s.View(func(v Values) { value, ok = v.Bool(key) })
	return value, ok
}

// GetInt64 reads a single long key.
func GetInt64(s Store, key string) (value int64, ok bool) {
	s.View(func(v Values) { value, ok = v.Int64(key) })
	return value, ok
}

func SetString(s Store, key, value string) error {
	return s.Update(func(v Values) error {
		v.SetString(key, value)
		return nil
	})
}

func SetBool(s Store, key string, value bool) error {
	return s.Update(func(v Values) error {
		v.SetBool(key, value)
		return nil
	})
}

func SetInt64(s Store, key string, value int64) error {
	return s.Update(func(v Values) error {
		v.SetInt64(key, value)
		return nil
	})
}

func Delete(s Store, keys ...string) error {
	return s.Update(func(v Values) error {
		v.Delete(keys...)
		return nil
	})
}

// Clear erases every key in the namespace.
func Clear(s Store) error {
	return s.Update(func(v Values) error {
		v.Clear()
		return nil
	})
}
