package client

import (
	"bytes"
	"context"
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"prizewheel/internal/models"
)

// AdminScraper reads the prize list out of the rendered admin page. It is the
// older data path; Client.Prizes reads the same data from /api/prizes.
type AdminScraper struct {
	c *Client
}

// Scraper returns an AdminScraper sharing the client's connection settings.
func (c *Client) Scraper() *AdminScraper {
	return &AdminScraper{c: c}
}

// Prizes fetches /admin and parses its prize table.
func (s *AdminScraper) Prizes(ctx context.Context) ([]models.Prize, error) {
	body, err := s.c.getBody(ctx, "/admin")
	if err != nil {
		return nil, err
	}
	return ParseAdminTable(body)
}

// ParseAdminTable extracts name and probability from the first two inputs of
// every row in the tbody of the table with id "prize-table".
func ParseAdminTable(page []byte) ([]models.Prize, error) {
	doc, err := html.Parse(bytes.NewReader(page))
	if err != nil {
		return nil, fmt.Errorf("%w: parse admin page: %v", ErrMalformed, err)
	}
	table := findElement(doc, func(n *html.Node) bool {
		return n.DataAtom == atom.Table && attr(n, "id") == "prize-table"
	})
	if table == nil {
		return nil, fmt.Errorf("%w: admin page has no #prize-table", ErrMalformed)
	}
	tbody := findElement(table, func(n *html.Node) bool { return n.DataAtom == atom.Tbody })
	if tbody == nil {
		return []models.Prize{}, nil
	}

	prizes := []models.Prize{}
	for row := tbody.FirstChild; row != nil; row = row.NextSibling {
		if row.Type != html.ElementNode || row.DataAtom != atom.Tr {
			continue
		}
		inputs := collectElements(row, func(n *html.Node) bool { return n.DataAtom == atom.Input })
		if len(inputs) < 2 {
			return nil, fmt.Errorf("%w: prize row has %d inputs", ErrMalformed, len(inputs))
		}
		probability, err := strconv.ParseFloat(strings.TrimSpace(attr(inputs[1], "value")), 64)
		if err != nil {
			return nil, fmt.Errorf("%w: prize %q probability: %v", ErrMalformed, attr(inputs[0], "value"), err)
		}
		prizes = append(prizes, models.Prize{
			Name:        attr(inputs[0], "value"),
			Probability: probability,
		})
	}
	return prizes, nil
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func findElement(n *html.Node, match func(*html.Node) bool) *html.Node {
	if n.Type == html.ElementNode && match(n) {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findElement(c, match); found != nil {
			return found
		}
	}
	return nil
}

func collectElements(n *html.Node, match func(*html.Node) bool) []*html.Node {
	var out []*html.Node
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && match(n) {
			out = append(out, n)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return out
}
