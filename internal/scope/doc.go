/*
Package scope provides the structural identifier of one dynamic position in a
render: the root, a loop or repeat iteration, or a component inclusion.

An ID is a path of segments, e.g. `for("items")@3[0]/component("card")@7`.
Each segment records the directive kind, the directive's subject (collection
or component name), the site number of the directive activation and the
iteration index. Names are quoted in the canonical key so segment boundaries
cannot be forged by names containing separators, and site numbers keep two
sibling loops over the same collection apart.
*/
package scope
