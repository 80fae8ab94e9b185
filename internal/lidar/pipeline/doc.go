// Package pipeline runs the reconstruction pass: for every beam of the scan
// pattern it maps the beam into the current sensor frame, looks up the
// decoded pixel, applies the physical sensor model and emits or discards
// the point. One pass is a single linear sweep with no state retained
// between beams beyond the shared frame snapshot and the RNG stream.
package pipeline
