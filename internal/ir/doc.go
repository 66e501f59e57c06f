// Package ir provides the foundational types shared by every deafbeat package.
//
// This package contains event and timing definitions plus the canonical JSON
// encoder used for content-addressed metadata. All other internal packages
// import ir; ir imports nothing internal.
//
// Key design constraints:
//   - Event times are sample offsets (uint32), never wall-clock values
//   - The six event type names are a closed table; anything else is EventUnknown
//   - Canonical JSON forbids floats, so float-valued metadata is carried as
//     fixed-precision strings or scaled integers
package ir
