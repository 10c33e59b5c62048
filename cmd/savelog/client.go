package main

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/term"
)

type uploadOptions struct {
	File     string
	Filename string
	Private  bool
	Expire   string
	Login    bool
	Username string
	Password string
}

type apiEnvelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *apiError       `json:"error"`
}

type apiError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func runUpload(cfg *clientConfig, opts uploadOptions) error {
	var token string
	if opts.Login || opts.Private {
		t, err := login(cfg, opts.Username, opts.Password)
		if err != nil {
			return err
		}
		token = t
	}

	content, err := readContent(opts.File)
	if err != nil {
		return err
	}

	expireMinutes := 0
	if opts.Expire != "" {
		expireMinutes, err = parseExpire(opts.Expire)
		if err != nil {
			return err
		}
	}

	return saveLog(cfg, token, content, opts.Filename, opts.Private, expireMinutes)
}

func login(cfg *clientConfig, username, password string) (string, error) {
	var err error
	if username == "" {
		username, err = promptLine("Username: ")
		if err != nil {
			return "", err
		}
	}
	if password == "" {
		password, err = promptPassword("Password: ")
		if err != nil {
			return "", err
		}
	}

	body, _ := json.Marshal(map[string]string{
		"username": username,
		"password": password,
	})
	resp, err := http.Post(cfg.BaseURL+"/login", "application/json", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	data, err := decodeEnvelope(resp)
	if err != nil {
		return "", fmt.Errorf("login failed: %w", err)
	}

	var loginData struct {
		AccessToken string `json:"access_token"`
	}
	if err := json.Unmarshal(data, &loginData); err != nil {
		return "", err
	}

	fmt.Println("Logged in.")
	return loginData.AccessToken, nil
}

func saveLog(cfg *clientConfig, token, content, filename string, private bool, expireMinutes int) error {
	payload := map[string]any{
		"content": content,
		"private": private,
	}
	if filename != "" {
		payload["filename"] = filename
	}
	if expireMinutes > 0 {
		payload["expire_minutes"] = expireMinutes
	}

	body, _ := json.Marshal(payload)
	req, err := http.NewRequest(http.MethodPost, cfg.BaseURL+"/logs", bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	data, err := decodeEnvelope(resp)
	if err != nil {
		return fmt.Errorf("upload failed: %w", err)
	}

	var created struct {
		ID       int64  `json:"id"`
		FileURL  string `json:"file_url"`
		ExpireAt string `json:"expire_at"`
	}
	if err := json.Unmarshal(data, &created); err != nil {
		return err
	}

	fmt.Printf("Saved: %s (id=%d, expires=%s)\n", created.FileURL, created.ID, created.ExpireAt)
	return nil
}

func decodeEnvelope(resp *http.Response) (json.RawMessage, error) {
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	var env apiEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, fmt.Errorf("unexpected response (%d): %s", resp.StatusCode, strings.TrimSpace(string(raw)))
	}
	if !env.Success {
		if env.Error != nil {
			return nil, fmt.Errorf("%s: %s", env.Error.Code, env.Error.Message)
		}
		return nil, fmt.Errorf("request failed with status %d", resp.StatusCode)
	}
	return env.Data, nil
}

func readContent(file string) (string, error) {
	if file != "" {
		data, err := os.ReadFile(file)
		if err != nil {
			return "", err
		}
		return string(data), nil
	}

	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

var expirePattern = regexp.MustCompile(`^(\d+)([mhdMY])$`)

// parseExpire turns the expiry grammar into minutes: m=minutes, h=hours,
// d=days, M=months of 30 days, Y=years of 365 days.
func parseExpire(s string) (int, error) {
	match := expirePattern.FindStringSubmatch(s)
	if match == nil {
		return 0, fmt.Errorf("invalid expire format %q (examples: 10m, 2h, 1d, 3M, 1Y)", s)
	}

	value, err := strconv.Atoi(match[1])
	if err != nil {
		return 0, err
	}

	switch match[2] {
	case "m":
		return value, nil
	case "h":
		return value * 60, nil
	case "d":
		return value * 60 * 24, nil
	case "M":
		return value * 60 * 24 * 30, nil
	case "Y":
		return value * 60 * 24 * 365, nil
	}
	return 0, fmt.Errorf("invalid expire unit %q", match[2])
}

func promptLine(prompt string) (string, error) {
	fmt.Print(prompt)
	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

func promptPassword(prompt string) (string, error) {
	fmt.Print(prompt)
	pw, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Println()
	if err != nil {
		return "", err
	}
	return string(pw), nil
}
