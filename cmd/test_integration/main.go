// test_integration drives a running rotcurve server end to end: it opens a
// session, uploads an archive, evaluates one galaxy and exports the result.
//
//	go run ./cmd/test_integration path/to/Rotmod_LTG.zip
package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"
)

var baseURL = "http://localhost:8080"

func main() {
	if v := os.Getenv("ROTCURVE_SERVER_URL"); v != "" {
		baseURL = v
	}
	if len(os.Args) < 2 {
		fmt.Println("usage: test_integration ARCHIVE.zip")
		os.Exit(2)
	}
	archive, err := os.ReadFile(os.Args[1])
	if err != nil {
		fmt.Printf("FAILED: read archive: %v\n", err)
		os.Exit(1)
	}

	// Wait for server to start
	time.Sleep(2 * time.Second)

	fmt.Println("Starting Integration Test...")

	fmt.Println("1. Creating session...")
	var created struct {
		ID string `json:"id"`
	}
	if !sendRequest("POST", "/sessions", nil, "", http.StatusCreated, &created) {
		fail("Create session")
	}
	fmt.Printf("PASSED: Create session %s\n", created.ID)
	prefix := "/sessions/" + created.ID

	fmt.Println("2. Uploading archive...")
	var report struct {
		Count  int `json:"count"`
		Errors []struct {
			Member  string `json:"member"`
			Message string `json:"message"`
		} `json:"errors"`
	}
	if !sendRequest("POST", prefix+"/archive", archive, "application/zip", http.StatusOK, &report) || report.Count == 0 {
		fail("Upload archive")
	}
	fmt.Printf("PASSED: Upload archive (%d galaxies, %d skipped)\n", report.Count, len(report.Errors))

	fmt.Println("3. Listing galaxies...")
	var list struct {
		Galaxies []string `json:"galaxies"`
	}
	if !sendRequest("GET", prefix+"/galaxies", nil, "", http.StatusOK, &list) || len(list.Galaxies) == 0 {
		fail("List galaxies")
	}
	galaxy := list.Galaxies[0]
	fmt.Printf("PASSED: List galaxies (first: %s)\n", galaxy)

	fmt.Println("4. Computing galaxy...")
	if !sendRequest("POST", prefix+"/galaxies/"+galaxy+"/compute", nil, "", http.StatusOK, nil) {
		fail("Compute galaxy")
	}
	fmt.Println("PASSED: Compute galaxy")

	fmt.Println("5. Exporting CSV...")
	if !sendRequest("GET", prefix+"/export.csv", nil, "", http.StatusOK, nil) {
		fail("Export CSV")
	}
	fmt.Println("PASSED: Export CSV")

	sendRequest("DELETE", prefix, nil, "", http.StatusNoContent, nil)
}

func fail(step string) {
	fmt.Printf("FAILED: %s\n", step)
	os.Exit(1)
}

func sendRequest(method, endpoint string, body []byte, contentType string, want int, out interface{}) bool {
	req, err := http.NewRequest(method, baseURL+endpoint, bytes.NewReader(body))
	if err != nil {
		fmt.Printf("Error creating request: %v\n", err)
		return false
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	client := &http.Client{Timeout: 2 * time.Minute}
	resp, err := client.Do(req)
	if err != nil {
		fmt.Printf("Error sending request: %v\n", err)
		return false
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != want {
		fmt.Printf("Request failed with status %d: %s\n", resp.StatusCode, string(respBody))
		return false
	}
	if out != nil {
		if err := json.Unmarshal(respBody, out); err != nil {
			fmt.Printf("Error decoding response: %v\n", err)
			return false
		}
	}
	if len(respBody) > 200 {
		respBody = respBody[:200]
	}
	fmt.Printf("Response: %s\n", string(respBody))
	return true
}
