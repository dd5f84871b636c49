package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"net/http"
	"net/url"
	"os"
)

func main() {
	server := flag.String("server", "http://localhost:9000", "Token service URL")
	room := flag.String("room", "", "Room name to join (required)")
	identity := flag.String("identity", "", "Participant identity (optional)")
	name := flag.String("name", "", "Participant display name (optional)")
	flag.Parse()

	if *room == "" {
		fmt.Fprintln(os.Stderr, "error: -room is required")
		flag.Usage()
		os.Exit(2)
	}

	q := url.Values{}
	q.Set("room", *room)
	if *identity != "" {
		q.Set("identity", *identity)
	}
	if *name != "" {
		q.Set("name", *name)
	}

	resp, err := http.Get(*server + "/get-token?" + q.Encode())
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: request failed: %v\n", err)
		os.Exit(1)
	}
	defer resp.Body.Close()

	var body struct {
		AccessToken string `json:"accessToken"`
		Identity    string `json:"identity"`
		Name        string `json:"name"`
		Room        string `json:"room"`
		Error       string `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		fmt.Fprintf(os.Stderr, "error: parse response: %v\n", err)
		os.Exit(1)
	}
	if resp.StatusCode != http.StatusOK {
		fmt.Fprintf(os.Stderr, "error: %s\n", body.Error)
		os.Exit(1)
	}

	fmt.Printf("Room:     %s\n", body.Room)
	fmt.Printf("Identity: %s\n", body.Identity)
	fmt.Printf("Name:     %s\n", body.Name)
	fmt.Printf("Token:    %s\n", body.AccessToken)
}
