/*
Package domain contains the core models shared by the waypoint navigation engine.

It defines what a navigation is made of, without any knowledge of how transitions
are scheduled or where session state is stored. The package stays free of I/O and
persistence concerns, following Hexagonal Architecture principles.

# Key Entities

  - ComponentDefinition: A routable component, its child viewports and nested routes.
  - RouteConfig: A configured path pattern mapped to a component or a redirect.
  - ViewportOptions: A named slot that hosts at most one component at a time.
  - NavigationContext: What a component hook sees about the navigation in progress.
  - RouterOptions / NavigationOptions: Strategies for history, same-URL handling,
    query params, fragments, routing mode and swap order.
  - State: The persisted snapshot of a session's history.
  - LifecycleHooks: Observability callbacks fired by the router.
*/
package domain
