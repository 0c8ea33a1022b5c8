package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"strings"

	"github.com/bingoduel/bingo-backend/internal/client"
)

func main() {
	url := flag.String("url", "ws://localhost:8080/ws", "authority websocket endpoint")
	name := flag.String("name", "bot", "display name")
	roomID := flag.String("room", "", "room code (created if -create)")
	create := flag.Bool("create", false, "create the room instead of joining")
	flag.Parse()

	if *roomID == "" {
		log.Fatal("missing -room")
	}

	ctx := context.Background()

	c, err := client.Dial(ctx, *url)
	if err != nil {
		log.Fatal(err)
	}
	defer c.Close()

	code := strings.ToUpper(*roomID)
	if *create {
		err = c.Create(ctx, code, *name)
	} else {
		err = c.Join(ctx, code, *name)
	}
	if err != nil {
		log.Fatal(err)
	}

	fmt.Printf("in room %s as %s, waiting for opponent...\n", code, *name)

	result, err := c.Play(ctx)
	if err != nil {
		log.Fatal(err)
	}
	fmt.Printf("seat %d: you %s\n", c.Seat(), result)
}
