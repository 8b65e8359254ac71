/*
Package dsl provides a Go DSL for programmatically constructing flow screen graphs.

It allows developers to define multi-screen flows using a type-safe, fluent
builder pattern instead of hand-writing wire-format JSON. This is particularly
useful for seeding flows in tests, generating flows dynamically, and leveraging
IDE autocompletion/type-checking.

Example usage:

	package main

	import (
		"github.com/zapflow/zapflow/pkg/domain"
		"github.com/zapflow/zapflow/pkg/dsl"
	)

	func main() {
		b := dsl.New()

		b.Screen("SCREEN_A").
			Title("Boas-vindas").
			Input("nome", "Qual o seu nome?").Required().
			Go("SCREEN_B")

		b.Screen("SCREEN_B").
			Title("Pagamento").
			Radio("forma", "Forma de pagamento",
				domain.Option{ID: "pix", Title: "Pix"},
				domain.Option{ID: "cartao", Title: "Cartão"}).
			Branch("forma", domain.OpEquals, "pix", "SCREEN_C")

		b.Screen("SCREEN_C").
			Title("Confirmação").
			Terminal()

		spec := b.Build()
		// spec is normalized: actions, terminals and routing views are
		// already consistent and ready for the editor or the wire codec.
		_ = spec
	}
*/
package dsl
