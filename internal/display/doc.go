// Package display renders notification panels as GTK4 layer-shell
// surfaces, positioned by slot index so panels from concurrent
// sessions stack without overlapping.
package display
