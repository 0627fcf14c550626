package config

import (
	"fmt"

	"github.com/spf13/viper"
)

// Resolver looks up keys scoped by an application namespace, e.g. "admin.database.menu_table".
// Unset keys resolve to the zero value.
type Resolver struct {
	v *viper.Viper
}

func NewResolver(v *viper.Viper) *Resolver {
	return &Resolver{v: v}
}

func (r *Resolver) key(ns, key string) string {
	return fmt.Sprintf("%s.%s", ns, key)
}

func (r *Resolver) Get(ns, key string) any {
	return r.v.Get(r.key(ns, key))
}

func (r *Resolver) String(ns, key string) string {
	return r.v.GetString(r.key(ns, key))
}

// StringOr returns def when the namespaced key is unset or empty.
func (r *Resolver) StringOr(ns, key, def string) string {
	if s := r.String(ns, key); s != "" {
		return s
	}
	return def
}

func (r *Resolver) Bool(ns, key string) bool {
	return r.v.GetBool(r.key(ns, key))
}

func (r *Resolver) IsSet(ns, key string) bool {
	return r.v.IsSet(r.key(ns, key))
}

// Global reads a key outside any namespace, such as "database.default".
func (r *Resolver) Global(key string) string {
	return r.v.GetString(key)
}
