package main

import (
	"fmt"
	"log"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"time"

	"github.com/gorilla/websocket"
)

type InboundMessage struct {
	RoomID string `json:"roomId"`
	Text   string `json:"text"`
}

// logs in against a local server, joins the broker and posts one message to a room
func main() {
	if len(os.Args) < 4 {
		fmt.Println("Usage: go run test_websocket.go <username> <password> <room_id>")
		fmt.Println("Example: go run test_websocket.go alice secret general")
		os.Exit(1)
	}

	username, password, roomID := os.Args[1], os.Args[2], os.Args[3]

	api := envOr("API_URL", "http://localhost:3000")
	broker := envOr("BROKER_URL", "ws://localhost:8000/")

	client := &http.Client{
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}

	resp, err := client.PostForm(api+"/login", url.Values{
		"username": {username},
		"password": {password},
	})
	if err != nil {
		log.Fatal("login:", err)
	}
	resp.Body.Close()

	if resp.Header.Get("Location") != "/" {
		log.Fatalf("login rejected (status %d, location %q)", resp.StatusCode, resp.Header.Get("Location"))
	}

	header := http.Header{}
	for _, cookie := range resp.Cookies() {
		header.Add("Cookie", cookie.String())
	}

	fmt.Printf("Connecting to %s\n", broker)

	c, _, err := websocket.DefaultDialer.Dial(broker, header)
	if err != nil {
		log.Fatal("dial:", err)
	}
	defer c.Close()

	fmt.Println("✅ Connected to broker!")

	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt)

	done := make(chan struct{})

	go func() {
		defer close(done)
		for {
			_, message, err := c.ReadMessage()
			if err != nil {
				log.Println("read:", err)
				return
			}
			fmt.Printf("📨 Received: %s\n", message)
		}
	}()

	time.Sleep(1 * time.Second)

	msg := InboundMessage{RoomID: roomID, Text: "hello from " + username}
	fmt.Printf("📤 Sending to %s: %s\n", roomID, msg.Text)

	if err := c.WriteJSON(msg); err != nil {
		log.Println("write:", err)
		return
	}

	select {
	case <-done:
		return
	case <-interrupt:
		fmt.Println("\n🛑 Interrupt received, closing connection...")

		err := c.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
		if err != nil {
			log.Println("write close:", err)
			return
		}
		select {
		case <-done:
		case <-time.After(time.Second):
		}
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}

	return fallback
}
