/*
Package domain contains the core domain models of the dashgrid placement engine.

It defines zones and their widths, the layout snapshot handed to observers and
persistence, the screen geometry used by hit-testing, and the read-only view of an
in-flight drag session. The package is kept pure and free of I/O, following the
same hexagonal split as the rest of the module: adapters depend on domain, never
the other way around.

# Key Entities

  - Zone: a named container holding an ordered list of component ids and a Width.
  - LayoutSnapshot: an immutable copy of every zone and the zone iteration order.
  - SessionSnapshot: what a renderer needs to draw the floating drag preview.
  - LifecycleHooks: callbacks for observability of drags and layout mutations.
*/
package domain
