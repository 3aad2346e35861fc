package rss

import (
	"encoding/xml"
	"fmt"
	"time"
)

// rssFeed covers RSS 2.0 documents.
type rssFeed struct {
	XMLName xml.Name `xml:"rss"`
	Channel struct {
		Items []rssItem `xml:"item"`
	} `xml:"channel"`
}

type rssItem struct {
	Title       string `xml:"title"`
	Link        string `xml:"link"`
	GUID        string `xml:"guid"`
	PubDate     string `xml:"pubDate"`
	Description string `xml:"description"`
}

// atomFeed covers Atom documents, which some lab blogs publish instead.
type atomFeed struct {
	XMLName xml.Name    `xml:"feed"`
	Entries []atomEntry `xml:"entry"`
}

type atomEntry struct {
	Title     string     `xml:"title"`
	ID        string     `xml:"id"`
	Updated   string     `xml:"updated"`
	Published string     `xml:"published"`
	Summary   string     `xml:"summary"`
	Content   string     `xml:"content"`
	Links     []atomLink `xml:"link"`
}

type atomLink struct {
	Rel  string `xml:"rel,attr"`
	Href string `xml:"href,attr"`
}

// entry is the format-neutral view of one feed item.
type entry struct {
	Title       string
	URL         string
	GUID        string
	Description string
	PublishedAt *time.Time
}

// parseFeed decodes either feed flavor into entries.
func parseFeed(data []byte) ([]entry, error) {
	var rss rssFeed
	if err := xml.Unmarshal(data, &rss); err == nil && rss.XMLName.Local == "rss" {
		entries := make([]entry, 0, len(rss.Channel.Items))
		for _, item := range rss.Channel.Items {
			guid := item.GUID
			if guid == "" {
				guid = item.Link
			}
			entries = append(entries, entry{
				Title:       item.Title,
				URL:         item.Link,
				GUID:        guid,
				Description: item.Description,
				PublishedAt: parseFeedTime(item.PubDate),
			})
		}
		return entries, nil
	}

	var atom atomFeed
	if err := xml.Unmarshal(data, &atom); err == nil && atom.XMLName.Local == "feed" {
		entries := make([]entry, 0, len(atom.Entries))
		for _, e := range atom.Entries {
			published := e.Published
			if published == "" {
				published = e.Updated
			}
			guid := e.ID
			url := ""
			for _, link := range e.Links {
				if link.Rel == "" || link.Rel == "alternate" {
					url = link.Href
					break
				}
			}
			if guid == "" {
				guid = url
			}
			description := e.Summary
			if description == "" {
				description = e.Content
			}
			entries = append(entries, entry{
				Title:       e.Title,
				URL:         url,
				GUID:        guid,
				Description: description,
				PublishedAt: parseFeedTime(published),
			})
		}
		return entries, nil
	}

	return nil, fmt.Errorf("document is neither RSS 2.0 nor Atom")
}

var feedTimeLayouts = []string{
	time.RFC1123Z,
	time.RFC1123,
	time.RFC3339,
	"Mon, 2 Jan 2006 15:04:05 -0700",
	"Mon, 2 Jan 2006 15:04:05 MST",
	"2006-01-02T15:04:05Z0700",
}

func parseFeedTime(value string) *time.Time {
	for _, layout := range feedTimeLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			utc := t.UTC()
			return &utc
		}
	}
	return nil
}
