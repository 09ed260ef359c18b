package cache

// ScopedKeyer prefixes every key of an inner Keyer. The CLI scopes keys by
// settings that change responses, e.g. a mirror URL, so two configurations
// can share one Redis instance.
//
//	keyer := NewScopedKeyer(NewDefaultKeyer(), "mirror:corp:")
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer creates a keyer with a prefix. A nil inner keyer means
// the DefaultKeyer.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{inner: inner, prefix: prefix}
}

func (k *ScopedKeyer) HTTPKey(namespace, key string) string {
	return k.prefix + k.inner.HTTPKey(namespace, key)
}

func (k *ScopedKeyer) LibrariesKey(opts LibrariesKeyOpts) string {
	return k.prefix + k.inner.LibrariesKey(opts)
}
