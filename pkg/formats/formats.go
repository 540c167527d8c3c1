// Package formats parses the Wavefront OBJ and MTL files models are loaded
// from.
package formats
