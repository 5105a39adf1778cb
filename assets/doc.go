// Package assets is the façade over a mpq.Collection: it normalizes
// logical asset names, decodes textures and models on demand, caches
// the results, and collapses concurrent requests for the same name
// into a single decode.
package assets
