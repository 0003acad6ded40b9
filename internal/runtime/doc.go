// Package runtime runs navigations.
//
// A Router turns navigation requests into transitions, serializes them, plans
// which viewports change, and drives every changing viewport through the
// lifecycle pipeline (canUnload, canLoad, unload, load, swap) with a shared
// coordinator so that sibling and nested viewports advance together. Failed,
// denied or redirected transitions roll back every planned change.
package runtime
