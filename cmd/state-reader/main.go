package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	_ "github.com/joho/godotenv/autoload"

	"github.com/klwxsrx/state-aggregator/internal/aggregator/infra/client"
	"github.com/klwxsrx/state-aggregator/internal/pkg/cmd"
)

// Prints the aggregator state snapshot, or a single value when a key is passed as the first argument
func main() {
	ctx := context.Background()
	infra := cmd.NewInfrastructureContainer()
	defer infra.Close(ctx)

	stateClient := client.NewStateClient(
		infra.HTTPClientFactory.MustLoad().MustInitClient(client.DestinationStateService),
	)

	if len(os.Args) > 1 {
		value, err := stateClient.Value(ctx, os.Args[1])
		if client.IsNotFound(err) {
			fmt.Printf("key %q not found\n", os.Args[1])
			return
		}
		if err != nil {
			panic(err)
		}

		fmt.Println(value)
		return
	}

	snapshot, err := stateClient.Snapshot(ctx)
	if err != nil {
		panic(err)
	}

	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	if err = encoder.Encode(snapshot); err != nil {
		panic(err)
	}
}
