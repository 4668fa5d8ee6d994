// Package graph defines the primitive tree produced by the plantkit
// generators. A DesignGraph holds named groups and oriented rigid
// primitives; every node carries a local transform relative to its
// parent and a role tag the rendering layer uses to pick materials.
package graph
