// Package kernel provides core domain primitives for the marketplace system.
// It implements fundamental building blocks following Domain-Driven Design
// principles that are used throughout the domain model.
//
// The package includes:
//   - UUID: A value object for unique identifiers with validation and comparison capabilities
//   - Money: A fixed-precision monetary value object with deterministic rounding
//   - Rate: A validated fractional rate in [0, 1) for VAT and commission percentages
//
// These primitives enforce domain invariants and validation rules, ensuring that
// domain objects are always in a valid state. They are designed to be immutable
// and thread-safe, making them suitable for concurrent use.
package kernel
