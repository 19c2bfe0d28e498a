//go:build lambda

package main

import (
	"context"
	_ "embed"
	"encoding/base64"
	"encoding/json"
	"errors"
	"math/rand"
	"time"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
)

//go:embed data.csv
var embeddedData string

var jsonHeader = map[string]string{
	"Content-Type": "application/json",
}

type simulateRequest struct {
	// Mode is "bracket" (default), "odds", or "conditioned".
	Mode            string `json:"mode"`
	DesiredChampion string `json:"desiredChampion"`
	Runs            int    `json:"runs"`
	Seed            int64  `json:"seed"`
	// Data optionally replaces the embedded CSV dataset.
	Data string `json:"data"`
}

type simulateResponse struct {
	Mode      string                              `json:"mode"`
	TimeMs    int64                               `json:"timeMs"`
	Bracket   string                              `json:"bracket,omitempty"`
	Champion  string                              `json:"champion,omitempty"`
	Runs      int                                 `json:"runs,omitempty"`
	Leaders   []ChampionOdds                      `json:"leaders,omitempty"`
	Accepted  int                                 `json:"accepted,omitempty"`
	Attempts  int                                 `json:"attempts,omitempty"`
	Finalists map[string]int                      `json:"finalists,omitempty"`
	Survivors map[string]map[Round]map[string]int `json:"survivors,omitempty"`
}

func handler(_ context.Context, event events.LambdaFunctionURLRequest) (events.LambdaFunctionURLResponse, error) {
	body := event.Body
	if event.IsBase64Encoded {
		decoded, err := base64.StdEncoding.DecodeString(body)
		if err != nil {
			return errResp(400, "invalid base64 body")
		}
		body = string(decoded)
	}

	var req simulateRequest
	if err := json.Unmarshal([]byte(body), &req); err != nil {
		return errResp(400, "invalid JSON: "+err.Error())
	}

	data := req.Data
	if data == "" {
		data = embeddedData
	}
	bracket, err := parseCSVBracket(data, DefaultLayout())
	if err != nil {
		return errResp(400, err.Error())
	}

	cfg := DefaultConfig()
	cfg.Seed = req.Seed
	if req.Runs > 0 {
		cfg.ChampionRuns = req.Runs
		cfg.AcceptedRuns = req.Runs
	}

	start := time.Now()
	resp := simulateResponse{Mode: req.Mode}

	switch req.Mode {
	case "", "bracket":
		resp.Mode = "bracket"
		rng := rand.New(rand.NewSource(baseSeed(cfg)))
		b := bracket.clone()
		if err := b.simulate(rng); err != nil {
			return errResp(422, err.Error())
		}
		resp.Bracket = FormatBracket(b)
		resp.Champion = b.Champion.Name

	case "odds":
		tally, err := SimulateChampionOdds(bracket, cfg)
		if err != nil {
			return errResp(422, err.Error())
		}
		resp.Runs = tally.Runs
		resp.Leaders = tally.Leaders(cfg.MinReportPct)

	case "conditioned":
		if req.DesiredChampion == "" {
			return errResp(400, "missing desiredChampion field")
		}
		tally, err := SimulateConditioned(bracket, req.DesiredChampion, cfg)
		if err != nil {
			var exhausted *ExhaustionError
			if errors.As(err, &exhausted) {
				return errResp(422, err.Error())
			}
			return errResp(500, err.Error())
		}
		resp.Champion = tally.Desired
		resp.Accepted = tally.Accepted
		resp.Attempts = tally.Attempts
		resp.Finalists = tally.Finalists
		resp.Survivors = tally.Survivors

	default:
		return errResp(400, "unknown mode "+req.Mode)
	}

	resp.TimeMs = time.Since(start).Milliseconds()
	respJSON, _ := json.Marshal(resp)
	return events.LambdaFunctionURLResponse{StatusCode: 200, Headers: jsonHeader, Body: string(respJSON)}, nil
}

func errResp(code int, msg string) (events.LambdaFunctionURLResponse, error) {
	body, _ := json.Marshal(map[string]string{"error": msg})
	return events.LambdaFunctionURLResponse{StatusCode: code, Headers: jsonHeader, Body: string(body)}, nil
}

func main() {
	lambda.Start(handler)
}
