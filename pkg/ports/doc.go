/*
Package ports defines the driven ports (interfaces) for the waypoint engine.

These interfaces decouple the router from the world around it: where the URL
lives, how components are displayed, and where session history is persisted.

# Key Interfaces

  - Location: The current URL plus push/replace and change notifications.
  - Renderer: Attaches and detaches component instances in a viewport.
  - StateStore: Responsible for persisting and loading session State.
  - DistributedLocker: Provides distributed locking for handling concurrent session access.
*/
package ports
