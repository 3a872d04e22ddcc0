package main

import (
	"bufio"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/nsf/termbox-go"

	"battleships/internal/client"
	"battleships/internal/models"
	"battleships/internal/network"
)

const keepAliveInterval = 5 * time.Second

func main() {
	var address string
	var nick string

	flag.StringVar(&address, "a", "127.0.0.1:10000", "server address")
	flag.StringVar(&address, "address", "127.0.0.1:10000", "server address")
	flag.StringVar(&nick, "n", "", "nickname to play under")
	flag.StringVar(&nick, "nick", "", "nickname to play under")
	flag.Parse()

	nickname, err := readNickname(nick)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	c, err := client.Connect(address)
	if err != nil {
		fmt.Fprintf(os.Stderr, "can't connect to %s: %v\n", address, err)
		os.Exit(1)
	}
	defer c.Close()

	if err := c.Send(network.Login{Nickname: nickname}); err != nil {
		fmt.Fprintf(os.Stderr, "can't login: %v\n", err)
		os.Exit(1)
	}

	stopKeepAlive := c.KeepAlive(keepAliveInterval)
	defer stopKeepAlive()

	ui := client.NewUI(nickname)
	if err := ui.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "can't initialize the terminal: %v\n", err)
		os.Exit(1)
	}
	defer ui.Close()

	events := make(chan termbox.Event)
	go func() {
		for {
			events <- termbox.PollEvent()
		}
	}()

	ui.Render()

	for !ui.Quit() {
		select {
		case message, ok := <-c.Messages:
			if !ok {
				ui.Close()
				fmt.Fprintf(os.Stderr, "connection lost: %v\n", c.Err())
				os.Exit(1)
			}
			ui.Apply(message)

		case ev := <-events:
			if ev.Type != termbox.EventKey {
				break
			}
			for _, message := range ui.HandleKey(ev) {
				if err := c.Send(message); err != nil {
					ui.Close()
					fmt.Fprintf(os.Stderr, "connection lost: %v\n", err)
					os.Exit(1)
				}
			}
		}

		ui.Render()
	}
}

// readNickname validates the flag value or asks for a nickname on stdin.
func readNickname(nick string) (models.Nickname, error) {
	if nick != "" {
		return models.NewNickname(nick)
	}

	reader := bufio.NewReader(os.Stdin)

	for {
		fmt.Print("nickname (3-32 alphanumeric characters): ")

		line, err := reader.ReadString('\n')
		if err != nil {
			return "", fmt.Errorf("can't read the nickname: %w", err)
		}

		nickname, err := models.NewNickname(strings.TrimSpace(line))
		if err == nil {
			return nickname, nil
		}

		fmt.Println(err)
	}
}
