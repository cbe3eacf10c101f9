// Package dimension provides the coordinate vocabulary for partitioned data.
//
// A Set names the axes along which a data product is partitioned (for
// example visit and detector). A DataID assigns a concrete value to each
// axis of some Set and identifies one partition.
//
// This package contains value types only. All other internal packages
// import dimension; dimension imports nothing internal. This keeps it the
// foundational layer with no circular dependencies.
//
// Key design constraints:
//   - Sets are immutable after construction; all operations return copies.
//   - DataID comparison is exact structural equality over the projected
//     axes. There is no fuzzy or partial matching of dimension values.
//   - Canonical keys are NFC-normalized and axis-sorted so that equal
//     DataIDs always produce byte-identical keys, regardless of the map
//     iteration order they were built in.
package dimension
