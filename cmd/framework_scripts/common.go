package main

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/jonathan/framework-scripts/internal/config"
	"github.com/jonathan/framework-scripts/internal/dataapi"
)

// newDataAPIClient builds a Data API client for the configured stage.
func newDataAPIClient() (*dataapi.Client, config.StageEndpoints, error) {
	if err := cfg.Require(config.DataAPITokenEnv); err != nil {
		return nil, config.StageEndpoints{}, err
	}
	ep, err := cfg.Endpoints()
	if err != nil {
		return nil, ep, err
	}
	return dataapi.New(ep.DataAPIURL, cfg.DataAPIToken, nil), ep, nil
}

// parseSupplierIDs parses a comma separated list such as "1,2,3".
func parseSupplierIDs(list string) ([]int, error) {
	if strings.TrimSpace(list) == "" {
		return nil, nil
	}
	var ids []int
	for _, part := range strings.Split(list, ",") {
		id, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			return nil, fmt.Errorf("invalid supplier id %q", part)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// readSupplierIDFile reads one supplier id per line, ignoring blank lines.
func readSupplierIDFile(path string) ([]int, error) {
	if path == "" {
		return nil, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open supplier id file: %w", err)
	}
	defer f.Close()

	var ids []int
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		id, err := strconv.Atoi(line)
		if err != nil {
			return nil, fmt.Errorf("invalid supplier id %q in %s", line, path)
		}
		ids = append(ids, id)
	}
	return ids, scanner.Err()
}

// supplierIDs merges the --supplier-ids flag and an optional id file.
func supplierIDs(list, file string) ([]int, error) {
	fromList, err := parseSupplierIDs(list)
	if err != nil {
		return nil, err
	}
	fromFile, err := readSupplierIDFile(file)
	if err != nil {
		return nil, err
	}
	return append(fromList, fromFile...), nil
}
