//                           _       _
// __      _____  __ ___   ___  __ _| |_ ___
// \ \ /\ / / _ \/ _` \ \ / / |/ _` | __/ _ \
//  \ V  V /  __/ (_| |\ V /| | (_| | ||  __/
//   \_/\_/ \___|\__,_| \_/ |_|\__,_|\__\___|
//
//  Copyright © 2016 - 2026 Weaviate B.V. All rights reserved.
//
//  CONTACT: hello@weaviate.io
//

package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/jessevdk/go-flags"
	"github.com/sirupsen/logrus"

	"github.com/weaviate/olapcore/adapters/handlers/rest"
	"github.com/weaviate/olapcore/adapters/handlers/rest/state"
	"github.com/weaviate/olapcore/usecases/config"
)

func main() {
	var opts config.Flags
	log := logrus.WithFields(logrus.Fields{"app": "olapcore"})

	if _, err := flags.Parse(&opts); err != nil {
		if flags.WroteHelp(err) {
			os.Exit(0)
		}
		log.WithError(err).Fatal("failed to parse command line args")
	}

	appState, err := rest.MakeAppState(&opts)
	if err != nil {
		log.WithError(err).Fatal("failed to start")
	}

	if err := serve(appState); err != nil {
		appState.Logger.WithError(err).Fatal("server stopped")
	}
}

// serve runs until SIGINT or SIGTERM.
func serve(appState *state.State) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return rest.Serve(ctx, appState)
}
