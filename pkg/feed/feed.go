// Package feed builds the RSS feed for the blog.
package feed

import (
	"encoding/xml"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/whenderson/siteshot/pkg/metadata"
)

// Channel describes the feed itself.
type Channel struct {
	Title       string
	SiteURL     string
	Description string
	Language    string
}

type rssXML struct {
	XMLName xml.Name   `xml:"rss"`
	Version string     `xml:"version,attr"`
	AtomNS  string     `xml:"xmlns:atom,attr"`
	MediaNS string     `xml:"xmlns:media,attr"`
	Channel rssChannel `xml:"channel"`
}

type rssChannel struct {
	Title         string    `xml:"title"`
	Link          string    `xml:"link"`
	AtomLink      atomLink  `xml:"atom:link"`
	Description   string    `xml:"description"`
	Language      string    `xml:"language,omitempty"`
	LastBuildDate string    `xml:"lastBuildDate"`
	Image         rssImage  `xml:"image"`
	Items         []rssItem `xml:"item"`
}

type atomLink struct {
	Href string `xml:"href,attr"`
	Rel  string `xml:"rel,attr"`
	Type string `xml:"type,attr"`
}

type rssImage struct {
	URL   string `xml:"url"`
	Title string `xml:"title"`
	Link  string `xml:"link"`
}

type rssItem struct {
	Title       cdata        `xml:"title"`
	Link        string       `xml:"link"`
	GUID        rssGUID      `xml:"guid"`
	PubDate     string       `xml:"pubDate"`
	Description cdata        `xml:"description"`
	Media       mediaContent `xml:"media:content"`
}

type cdata struct {
	Value string `xml:",cdata"`
}

type rssGUID struct {
	IsPermaLink string `xml:"isPermaLink,attr"`
	Value       string `xml:",chardata"`
}

type mediaContent struct {
	URL    string `xml:"url,attr"`
	Medium string `xml:"medium,attr"`
}

// Build renders posts as an RSS 2.0 document, newest first. now is used
// as the build date.
func Build(posts []metadata.Post, ch Channel, now time.Time) ([]byte, error) {
	base := strings.TrimRight(ch.SiteURL, "/")

	sorted := make([]metadata.Post, len(posts))
	copy(sorted, posts)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sortKey(sorted[i].Date) > sortKey(sorted[j].Date)
	})

	items := make([]rssItem, 0, len(sorted))
	for _, p := range sorted {
		link := base + p.Slug
		items = append(items, rssItem{
			Title:       cdata{p.Title},
			Link:        link,
			GUID:        rssGUID{IsPermaLink: "false", Value: link},
			PubDate:     PubDate(p.Date),
			Description: cdata{p.Description},
			Media:       mediaContent{URL: base + "/images" + p.Slug + ".png", Medium: "image"},
		})
	}

	blog := base + "/blog"
	doc := rssXML{
		Version: "2.0",
		AtomNS:  "http://www.w3.org/2005/Atom",
		MediaNS: "http://search.yahoo.com/mrss/",
		Channel: rssChannel{
			Title:         ch.Title,
			Link:          blog,
			AtomLink:      atomLink{Href: base + "/feed.xml", Rel: "self", Type: "application/rss+xml"},
			Description:   ch.Description,
			Language:      ch.Language,
			LastBuildDate: now.UTC().Format(time.RFC1123Z),
			Image:         rssImage{URL: base + "/images/icon.png", Title: ch.Title, Link: blog},
			Items:         items,
		},
	}

	out, err := xml.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode feed: %w", err)
	}
	return append([]byte(xml.Header), out...), nil
}

// Write builds the feed and writes it to path.
func Write(path string, posts []metadata.Post, ch Channel, now time.Time) error {
	data, err := Build(posts, ch, now)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write feed: %w", err)
	}
	return nil
}

// PubDate formats an ISO date as an RFC 1123 date at midnight UTC. It
// returns "" for dates it cannot parse.
func PubDate(date string) string {
	t, ok := parseDate(date)
	if !ok {
		return ""
	}
	return t.Format(time.RFC1123Z)
}

func parseDate(date string) (time.Time, bool) {
	date = strings.TrimSpace(date)
	if t, err := time.Parse("2006-01-02", date); err == nil {
		return t, true
	}
	if t, err := time.Parse(time.RFC3339, date); err == nil {
		y, m, d := t.Date()
		return time.Date(y, m, d, 0, 0, 0, 0, time.UTC), true
	}
	return time.Time{}, false
}

// sortKey orders parseable dates chronologically and falls back to the raw
// string otherwise.
func sortKey(date string) string {
	if t, ok := parseDate(date); ok {
		return t.Format("2006-01-02")
	}
	return date
}
