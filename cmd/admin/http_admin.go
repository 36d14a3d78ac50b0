package main

import (
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"
)

func stateCmd(args []string) { adminCall("state", http.MethodGet, "/admin/v1/state", args) }

func snapshotCmd(args []string) { adminCall("snapshot", http.MethodPost, "/admin/v1/snapshot", args) }

// adminCall prints the response body of a loopback admin endpoint and exits
// non-zero on a non-2xx status.
func adminCall(name, method, path string, args []string) {
	fs := flag.NewFlagSet(name, flag.ExitOnError)
	baseURL := fs.String("url", "http://127.0.0.1:8080", "server base url")
	timeout := fs.Duration("timeout", 10*time.Second, "request timeout")
	_ = fs.Parse(args)

	u := strings.TrimRight(strings.TrimSpace(*baseURL), "/") + path
	req, err := http.NewRequest(method, u, nil)
	if err != nil {
		fail("request", err)
	}
	resp, err := (&http.Client{Timeout: *timeout}).Do(req)
	if err != nil {
		fail("request", err)
	}
	defer resp.Body.Close()
	b, _ := io.ReadAll(resp.Body)
	fmt.Println(strings.TrimSpace(string(b)))
	if resp.StatusCode/100 != 2 {
		os.Exit(1)
	}
}
