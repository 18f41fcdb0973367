// Package resolver builds values from declarative definitions.
//
// A definition is one of four shapes, decided once by Classify:
//
//	resolver.Closure      func(c resolver.Container) (any, error)
//	resolver.ObjectConfig {Class: "mailer", Args: {"from": "noreply@example.com"}}
//	resolver.ClassName    "mailer"
//	resolver.Literal      anything else, returned as is
//
// Go has no runtime constructor lookup by name, so classes are registered in
// a Registry together with their parameter names and defaults:
//
//	reg := resolver.NewRegistry()
//	reg.MustDefine("mailer", NewMailer,
//	    resolver.Arg("transport"),
//	    resolver.Arg("from").Default("noreply@example.com"),
//	)
//
// When a class is resolved each parameter is filled from, in order: the
// predefined args of the ObjectConfig, the container (by TypeID of the
// declared type), the declared default. Parameters typed as the empty
// interface count as untyped and must have a default.
package resolver
