/*
Package zapflow is a screen-graph editing engine for WhatsApp-style
conversational flows: ordered screens with forms, a default route per screen,
and conditional branch rules on submitted field values.

Every mutation goes through a deterministic normalizer, so the graph a caller
observes is always self-consistent: no dangling references, no screen that is
simultaneously terminal and routed, branch destinations auto-finalized, and
every derived view (routing table, default-next map) recomputed from the
screens themselves. Problems the normalizer cannot repair on its own surface
as human-readable validation issues instead of errors.

# Architecture

The core follows a hexagonal layout. The engine and validator are pure
value-in/value-out transforms over Spec snapshots; ports define the storage,
source and locking contracts; adapters supply Redis, Loam, in-memory, HTTP
and MCP implementations.

# Usage

	package main

	import (
		"context"
		"fmt"
		"log"

		"github.com/zapflow/zapflow"
		"github.com/zapflow/zapflow/pkg/domain"
	)

	func main() {
		ed, err := zapflow.New()
		if err != nil {
			log.Fatal(err)
		}

		ctx := context.Background()
		spec, err := ed.Open(ctx, "onboarding")
		if err != nil {
			log.Fatal(err)
		}
		fmt.Println(spec.Screens[0].ID) // SCREEN_A

		spec, _, err = ed.Apply(ctx, "onboarding", domain.Edit{Type: domain.EditAddScreen})
		if err != nil {
			log.Fatal(err)
		}
		fmt.Println(len(spec.Screens)) // 2
	}

The wire package converts between the normalized graph and the JSON flow
document consumed by the publishing pipeline, including upgrades from two
legacy document shapes.
*/
package zapflow
