/*
Package waypoint is a client-side navigation engine: it maps route expressions
such as "inbox@main+message(3)@side" onto a tree of named viewports and keeps
that tree, the URL and the history stack consistent.

A navigation is queued, checked against every CanUnload and CanLoad guard,
and only then committed: components are swapped in their viewports, the URL
is pushed or replaced, and lifecycle hooks fire. A failed or cancelled
navigation leaves the previous tree in place.

# Key Features

  - Route expressions: sibling (+), child (/), scoped viewport (@) and params.
  - Configured routes with ":param" and "*rest" segments plus redirects.
  - Guards, reentry policies and stateful viewports that cache content.
  - Durable sessions: history snapshots persisted to file, Redis or memory.
  - Adapters: HTTP with SSE, Model Context Protocol tools, an NDJSON REPL.

# Usage

Build components with the dsl package (or load a YAML file with FromConfig)
and create a router bound to a location.

	b := dsl.New()
	b.Route("", "home").Route("products/:id", "product")
	b.Component("home").Title("Home")
	b.Component("product").Title("Product")

	app, err := waypoint.FromBuilder(b)
	if err != nil {
		log.Fatal(err)
	}

	router, err := app.NewRouter(memory.NewHistory(""))
	if err != nil {
		log.Fatal(err)
	}
	defer router.Stop()

	if _, err := router.Start(ctx); err != nil {
		log.Fatal(err)
	}
	ok, err := router.Load(ctx, "products/42")
*/
package waypoint
