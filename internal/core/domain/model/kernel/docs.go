// Package kernel holds the value objects shared by every warehouse aggregate:
// identifiers (UUID) and unit barcodes (Barcode) with their normalization rules.
package kernel
