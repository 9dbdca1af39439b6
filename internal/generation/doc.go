// Package generation defines the boundary between the application core and
// the content generator: the Generator interface, the kind-specific
// parameter types with their validation, and the error taxonomy generator
// implementations map their failures onto. The core never knows how content
// is produced; it only sees this interface.
package generation
