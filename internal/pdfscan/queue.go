package pdfscan

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
)

// DefaultQueuePath is where the list of documents to scan is kept between runs.
const DefaultQueuePath = "/tmp/pdf-scan-queue.json"

// SaveQueue writes one JSON object per line.
func SaveQueue(path string, objects []Object) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create queue file: %w", err)
	}

	w := bufio.NewWriter(f)
	enc := json.NewEncoder(w)
	for _, obj := range objects {
		if err := enc.Encode(obj); err != nil {
			_ = f.Close()
			return fmt.Errorf("failed to write queue file: %w", err)
		}
	}
	if err := w.Flush(); err != nil {
		_ = f.Close()
		return fmt.Errorf("failed to write queue file: %w", err)
	}
	return f.Close()
}

// LoadQueue reads a queue written by SaveQueue.
func LoadQueue(path string) ([]Object, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open queue file: %w", err)
	}
	defer f.Close()

	var objects []Object
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for line := 1; scanner.Scan(); line++ {
		if len(scanner.Bytes()) == 0 {
			continue
		}
		var obj Object
		if err := json.Unmarshal(scanner.Bytes(), &obj); err != nil {
			return nil, fmt.Errorf("invalid queue entry on line %d: %w", line, err)
		}
		objects = append(objects, obj)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read queue file: %w", err)
	}
	return objects, nil
}
