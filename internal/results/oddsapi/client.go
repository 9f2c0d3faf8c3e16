package oddsapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/radieske/wager-settlement-poc/internal/results"
)

// Client consulta placares finais no endpoint /v4/sports/{sport}/scores
// da The Odds API (o results-simulator local fala o mesmo contrato).
// Camada fina e sem estado: nenhuma política de cache ou retry aqui.
type Client struct {
	BaseURL string
	APIKey  string
	HTTP    *http.Client
}

func New(baseURL, apiKey string) *Client {
	return &Client{
		BaseURL: baseURL,
		APIKey:  apiKey,
		HTTP:    &http.Client{Timeout: 10 * time.Second},
	}
}

// scoreResponse é o payload do provedor
type scoreResponse struct {
	ID        string `json:"id"`
	SportKey  string `json:"sport_key"`
	HomeTeam  string `json:"home_team"`
	AwayTeam  string `json:"away_team"`
	Completed bool   `json:"completed"`
	Scores    []struct {
		Name  string `json:"name"`
		Score string `json:"score"`
	} `json:"scores"`
}

// FinalScore busca o placar final de um jogo.
// Jogo ausente ou em andamento vira Score{Completed: false}, sem erro.
// Apostas antigas sem gameId no snapshot não têm como ser consultadas:
// ficam como não-finalizadas até intervenção manual.
func (c *Client) FinalScore(ctx context.Context, sportKey, gameID string) (results.Score, error) {
	if gameID == "" {
		return results.Score{}, nil
	}

	u := fmt.Sprintf("%s/v4/sports/%s/scores/?apiKey=%s&daysFrom=3&eventIds=%s",
		c.BaseURL, url.PathEscape(sportKey), url.QueryEscape(c.APIKey), url.QueryEscape(gameID))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return results.Score{}, err
	}

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return results.Score{}, fmt.Errorf("results provider: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return results.Score{}, nil
	}
	if resp.StatusCode != http.StatusOK {
		return results.Score{}, fmt.Errorf("results provider http %s", resp.Status)
	}

	var payload []scoreResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return results.Score{}, fmt.Errorf("decode scores: %w", err)
	}

	if len(payload) == 0 || !payload[0].Completed {
		return results.Score{}, nil
	}

	return toScore(payload[0])
}

// toScore mapeia o payload do provedor (placares por nome de time) para Score
func toScore(in scoreResponse) (results.Score, error) {
	out := results.Score{
		Completed: true,
		HomeTeam:  in.HomeTeam,
		AwayTeam:  in.AwayTeam,
	}

	var haveHome, haveAway bool
	for _, s := range in.Scores {
		n, err := strconv.Atoi(s.Score)
		if err != nil {
			return results.Score{}, fmt.Errorf("parse score %q for %s: %w", s.Score, s.Name, err)
		}
		switch s.Name {
		case in.HomeTeam:
			out.HomeScore = n
			haveHome = true
		case in.AwayTeam:
			out.AwayScore = n
			haveAway = true
		}
	}

	if !haveHome || !haveAway {
		return results.Score{}, fmt.Errorf("incomplete scores for game %s", in.ID)
	}

	return out, nil
}
