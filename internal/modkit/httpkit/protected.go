package httpkit

import "enrollgate/internal/platform/net/middleware"

// Protected groups routes behind bearer auth
func Protected(r Router, p middleware.AuthPort, fn func(Router)) {
	r.Group(func(gr Router) {
		gr.Use(Auth(p))
		fn(gr)
	})
}

// Admin groups routes that additionally require the admin role
// Must be nested inside Protected
func Admin(r Router, fn func(Router)) {
	r.Group(func(gr Router) {
		gr.Use(RequireRole(RoleAdmin))
		fn(gr)
	})
}

// Learner groups routes reserved for the learner role
// Must be nested inside Protected
func Learner(r Router, fn func(Router)) {
	r.Group(func(gr Router) {
		gr.Use(RequireRole(RoleLearner))
		fn(gr)
	})
}
