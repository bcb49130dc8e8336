// Package catalog holds the test catalog: suites (one per test class) and the
// cases (test methods) they own.
//
// Classes and methods are registered through two independent streams whose
// relative order is decided by the host's load mechanism. The Registry
// reconciles them: a method registered before its class stays pending until
// the class arrives, a method registered after its class is attached at once.
// Either way the resulting structure is the same.
//
// A Registry is populated during discovery and then sealed; after Seal it is
// read-only. Suites and cases may be read concurrently with registration.
package catalog
