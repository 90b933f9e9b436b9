// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// The greet command shows commands built from struct types.
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/yeetrun/sigcli/pkg/cobrart"
	"github.com/yeetrun/sigcli/pkg/command"
	"tailscale.com/util/must"
)

type greetArgs struct {
	Name     string `sig:",positional" help:"Who to greet"`
	Count    int    `default:"1" help:"How many times"`
	Shout    bool   `help:"Greet loudly"`
	Greeting string `sig:",keyword" choices:"hello,hi,howdy" default:"hello" env:"GREET_GREETING"`
}

type waveArgs struct {
	Names []string `sig:",variadic" help:"Who to wave at"`
	Hand  string   `sig:",keyword" choices:"left,right" default:"right"`
}

func greet(_ context.Context, a greetArgs) error {
	msg := fmt.Sprintf("%s, %s!", a.Greeting, a.Name)
	if a.Shout {
		msg = strings.ToUpper(msg)
	}
	for range a.Count {
		fmt.Println(msg)
	}
	return nil
}

func wave(_ context.Context, a waveArgs) error {
	if len(a.Names) == 0 {
		fmt.Printf("*waves %s hand*\n", a.Hand)
		return nil
	}
	fmt.Printf("*waves %s hand at %s*\n", a.Hand, strings.Join(a.Names, ", "))
	return nil
}

func main() {
	log.SetFlags(0)
	root := command.Group("greet", "Say hello in a few ways.",
		must.Get(command.For("hello", greet,
			command.WithHelp("Greet someone by name."),
			command.WithEpilog("See also: wave"))),
		must.Get(command.For("wave", wave,
			command.WithHelp("Wave at people."))),
	)
	if err := root.Execute(context.Background(), os.Args[1:]); err != nil {
		log.Printf("Error: %v", err)
		var ue *cobrart.UsageError
		if errors.As(err, &ue) {
			os.Exit(2)
		}
		os.Exit(1)
	}
}
