package main

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"

	"github.com/vovakirdan/lobby-server/internal/proto"
)

func main() {
	if err := run(); err != nil {
		log.Printf("ws_smoke: %v", err)
		os.Exit(1)
	}
}

func run() error {
	addr := flag.String("addr", "http://localhost:8080", "server base URL")
	token := flag.String("token", "", "bearer token (see `lobby-server token`)")
	seats := flag.Int("seats", 2, "seats of the queue room to request")
	mode := flag.String("mode", "", "optional mode property to match on")
	timeout := flag.Duration("timeout", 30*time.Second, "total timeout for the run")
	flag.Parse()

	if *token == "" {
		return fmt.Errorf("-token is required")
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	want := map[string]any{"seats": *seats}
	if *mode != "" {
		want["mode"] = *mode
	}

	room, err := queue(ctx, *addr, *token, want)
	if err != nil {
		return err
	}
	fmt.Printf("Queued: room=%d status=%s users=%v\n", room.ID, room.Status, room.Users)
	if room.Status == "ready" {
		return nil
	}

	wsURL := strings.Replace(*addr, "http", "ws", 1) + "/ws?room=" + strconv.FormatInt(room.ID, 10) + "&token=" + *token
	conn, _, err := websocket.Dial(ctx, wsURL, nil)
	if err != nil {
		return fmt.Errorf("dial: %w", err)
	}
	defer conn.Close(websocket.StatusNormalClosure, "bye")

	for {
		var outbound proto.Outbound
		if err := wsjson.Read(ctx, conn, &outbound); err != nil {
			return fmt.Errorf("read: %w", err)
		}

		fmt.Printf("Received outbound: type=%s", outbound.Type)
		if outbound.Event != "" {
			fmt.Printf(" event=%s", outbound.Event)
		}
		fmt.Println()

		if outbound.Error != nil {
			return fmt.Errorf("server error %s: %s", outbound.Error.Code, outbound.Error.Msg)
		}
		if outbound.Type != proto.OutboundTypeEvent {
			continue
		}

		raw, err := json.Marshal(outbound.Data)
		if err != nil {
			return fmt.Errorf("marshal outbound data: %w", err)
		}
		var evt proto.EventData
		if err := json.Unmarshal(raw, &evt); err != nil {
			fmt.Printf("Raw data: %s\n", string(raw))
			return fmt.Errorf("unmarshal event: %w", err)
		}

		switch outbound.Event {
		case "user:join", "user:leave":
			fmt.Printf("%s: room=%d user=%s users=%v\n", outbound.Event, evt.Room, evt.User, evt.State.Users)
		case "room:status":
			fmt.Printf("Status: room=%d %s -> %s\n", evt.Room, evt.From, evt.To)
			if evt.To == "ready" {
				return nil
			}
		case "room:destroy":
			return fmt.Errorf("room %d destroyed before it filled", evt.Room)
		default:
			// keep waiting for the room to fill
		}
	}
}

func queue(ctx context.Context, addr, token string, want map[string]any) (*proto.RoomState, error) {
	body, err := json.Marshal(want)
	if err != nil {
		return nil, fmt.Errorf("marshal config: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, addr+"/api/rooms/queues", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("queue: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		var apiErr struct {
			Error string `json:"error"`
			Code  string `json:"code"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&apiErr)
		return nil, fmt.Errorf("queue: %s %s: %s", resp.Status, apiErr.Code, apiErr.Error)
	}

	var room proto.RoomState
	if err := json.NewDecoder(resp.Body).Decode(&room); err != nil {
		return nil, fmt.Errorf("decode room: %w", err)
	}
	return &room, nil
}
