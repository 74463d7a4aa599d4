package main

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"sync"
	"testing"

	"github.com/flemzord/botapi/pkg/botapi"
)

func TestUpdatePrinter(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	p := newUpdatePrinter(&buf)

	var wg sync.WaitGroup
	for i := 1; i <= 20; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			_ = p.HandleUpdate(context.Background(), botapi.Update{UpdateID: id})
		}(i)
	}
	wg.Wait()

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 20 {
		t.Fatalf("lines = %d, want 20", len(lines))
	}
	seen := map[int]bool{}
	for _, line := range lines {
		var u botapi.Update
		if err := json.Unmarshal([]byte(line), &u); err != nil {
			t.Fatalf("line %q: %v", line, err)
		}
		seen[u.UpdateID] = true
	}
	if len(seen) != 20 {
		t.Errorf("distinct updates = %d, want 20", len(seen))
	}
}
