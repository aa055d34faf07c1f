// Interactive relay client for manual testing. Connects to a running
// relay, registers, and turns stdin lines into chat messages.
//
// Commands:
//
//	/create          create a room and join it
//	/join <room_id>  join an existing room
//	/users           list the members of the current room
//	/rooms           list open rooms (HTTP side endpoint)
//	/quit            leave
//
// Anything else is sent as a message to the current room.
package main

import (
	"bufio"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"os"
	"strings"

	"github.com/gookit/color"
	"github.com/gorilla/websocket"
	"github.com/olekukonko/tablewriter"

	"chat-relay/transport/ws"
)

type chatMessage struct {
	Type     string `json:"type"`
	Username string `json:"username,omitempty"`
	Content  string `json:"content"`
}

type payload struct {
	Username string          `json:"username,omitempty"`
	RoomID   string          `json:"room_id,omitempty"`
	Content  string          `json:"content,omitempty"`
	Message  json.RawMessage `json:"message,omitempty"`
	Success  bool            `json:"success,omitempty"`
	Users    []string        `json:"users,omitempty"`
	Messages []chatMessage   `json:"messages,omitempty"`
}

func main() {
	addr := flag.String("addr", "localhost:8000", "Relay address")
	name := flag.String("name", "", "Username (empty for a server-picked one)")
	flag.Parse()

	wsURL := url.URL{Scheme: "ws", Host: *addr, Path: "/ws"}
	conn, _, err := websocket.DefaultDialer.Dial(wsURL.String(), nil)
	if err != nil {
		log.Fatalf("Connection to %s failed: %v", wsURL.String(), err)
	}
	defer conn.Close()

	send(conn, "register", map[string]string{"username": *name})

	go readLoop(conn)

	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		switch {
		case line == "":
		case line == "/quit":
			_ = conn.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return
		case line == "/create":
			send(conn, "create_room", nil)
		case strings.HasPrefix(line, "/join "):
			send(conn, "join_room", map[string]string{"room_id": strings.TrimSpace(line[len("/join "):])})
		case line == "/users":
			send(conn, "get_room_users", nil)
		case line == "/rooms":
			printRooms(*addr)
		default:
			send(conn, "send_message", map[string]string{"content": line})
		}
	}
}

func send(conn *websocket.Conn, eventName string, data any) {
	raw, err := json.Marshal(data)
	if err != nil {
		log.Fatalf("Marshal failed: %v", err)
	}
	if err := conn.WriteJSON(ws.Frame{Event: eventName, Data: raw}); err != nil {
		log.Fatalf("Write failed: %v", err)
	}
}

func readLoop(conn *websocket.Conn) {
	for {
		var frame ws.Frame
		if err := conn.ReadJSON(&frame); err != nil {
			color.Red.Println("Connection closed:", err)
			os.Exit(0)
		}

		var p payload
		if err := json.Unmarshal(frame.Data, &p); err != nil {
			color.Red.Printf("Bad payload on %s: %v\n", frame.Event, err)
			continue
		}

		switch frame.Event {
		case "register_response":
			color.Green.Printf("Registered as %s\n", p.Username)
		case "room_created":
			color.Green.Printf("Room created: %s\n", p.RoomID)
		case "chat_history":
			color.Gray.Printf("--- history (%d messages) ---\n", len(p.Messages))
			for _, m := range p.Messages {
				if m.Type == "system" {
					color.Gray.Println(m.Content)
				} else {
					fmt.Printf("%s: %s\n", color.Cyan.Render(m.Username), m.Content)
				}
			}
			color.Gray.Println("--- end of history ---")
		case "room_users":
			color.Yellow.Printf("In room: %s\n", strings.Join(p.Users, ", "))
		case "user_joined", "user_left":
			var notice chatMessage
			if err := json.Unmarshal(p.Message, &notice); err == nil {
				color.Gray.Println(notice.Content)
			}
		case "new_message":
			fmt.Printf("%s: %s\n", color.Cyan.Render(p.Username), p.Content)
		case "error":
			var reason string
			_ = json.Unmarshal(p.Message, &reason)
			color.Red.Println("Error:", reason)
		default:
			color.Gray.Printf("%s: %s\n", frame.Event, string(frame.Data))
		}
	}
}

func printRooms(addr string) {
	resp, err := http.Get(fmt.Sprintf("http://%s/rooms", addr))
	if err != nil {
		color.Red.Println("Room listing failed:", err)
		return
	}
	defer resp.Body.Close()

	var body struct {
		Rooms []string `json:"rooms"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		color.Red.Println("Room listing decode failed:", err)
		return
	}

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"#", "Room ID"})
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetBorder(false)
	for i, id := range body.Rooms {
		table.Append([]string{fmt.Sprintf("%d", i+1), id})
	}
	table.Render()
}
