package services

import (
	"net/http"
	"os"
	"sync"
	"time"

	confluence "github.com/ctreminiom/go-atlassian/confluence/v2"
	jira "github.com/ctreminiom/go-atlassian/jira/v3"
)

// DefaultHttpClient is shared by the Atlassian clients.
var DefaultHttpClient = sync.OnceValue(func() *http.Client {
	return &http.Client{Timeout: 30 * time.Second}
})

type atlassianConfig struct {
	host  string
	email string
	token string
}

func loadAtlassianConfig() atlassianConfig {
	host := os.Getenv("ATLASSIAN_HOST")
	email := os.Getenv("ATLASSIAN_EMAIL")
	token := os.Getenv("ATLASSIAN_TOKEN")

	if host == "" || email == "" || token == "" {
		panic("ATLASSIAN_HOST, ATLASSIAN_EMAIL, ATLASSIAN_TOKEN are required, please set them in MCP Config")
	}
	return atlassianConfig{host: host, email: email, token: token}
}

// JiraClient talks to the Jira Cloud v3 API, which carries rich text as ADF.
var JiraClient = sync.OnceValue(func() *jira.Client {
	cfg := loadAtlassianConfig()

	client, err := jira.New(DefaultHttpClient(), cfg.host)
	if err != nil {
		panic(err)
	}
	client.Auth.SetBasicAuth(cfg.email, cfg.token)
	return client
})

// ConfluenceClient talks to the Confluence Cloud v2 API.
var ConfluenceClient = sync.OnceValue(func() *confluence.Client {
	cfg := loadAtlassianConfig()

	client, err := confluence.New(DefaultHttpClient(), cfg.host)
	if err != nil {
		panic(err)
	}
	client.Auth.SetBasicAuth(cfg.email, cfg.token)
	return client
})
