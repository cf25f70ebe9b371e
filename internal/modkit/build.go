package modkit

import (
	"net/http"
	"slices"

	phttp "enrollgate/internal/platform/net/http"
	str "enrollgate/internal/platform/strings"
)

// Built is the resolved build configuration modules read from
type Built struct {
	Name     string
	Prefix   string
	Mw       []func(http.Handler) http.Handler
	Ports    any
	Register func(phttp.Router)
}

// Build applies opts in order; later options win
func Build(opts ...Option) Built {
	var c buildCfg
	for _, o := range opts {
		o(&c)
	}
	if c.register == nil {
		c.register = func(phttp.Router) {}
	}
	return Built{
		Name:     str.MustString(c.name, "module name"),
		Prefix:   str.MustPrefix(c.prefix),
		Mw:       slices.Clone(c.mw),
		Ports:    c.ports,
		Register: c.register,
	}
}

// Mount routes prefix with the module middleware, then calls register and the external hook
func (b Built) Mount(r phttp.Router, register func(phttp.Router)) {
	r.Route(b.Prefix, func(rr phttp.Router) {
		if len(b.Mw) > 0 {
			rr.Use(b.Mw...)
		}
		register(rr)
		b.Register(rr)
	})
}
