/*
Package dsl provides a Go DSL (Domain Specific Language) for programmatically declaring waypoint components.

It lets developers define routable components, their child viewports, nested routes and
lifecycle hooks with a fluent builder instead of hand-writing types that implement every
hook interface. This is particularly useful for prototypes and unit testing.

Example usage:

	b := dsl.New()
	b.Viewport("main").Viewport("side", dsl.Stateful())
	b.Route("", "home").Route("products/:id", "product")

	b.Component("home").Title("Home")
	b.Component("product").
		Title("Product").
		CanLoad(func(ctx context.Context, nav *domain.NavigationContext) (domain.GuardResult, error) {
			if nav.Params["id"] == "0" {
				return domain.RedirectTo("home"), nil
			}
			return domain.Allow(), nil
		})

	reg, err := b.Build()
	// ... pass reg, b.Routes() and b.Viewports() to waypoint.New(...)
*/
package dsl
