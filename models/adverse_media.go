package models

import (
	"strings"
	"time"
)

type MediaTag int

const (
	MediaTagSanctions MediaTag = iota
	MediaTagPep
	MediaTagFraud
	MediaTagCrime
	MediaTagOther
	MediaTagUnknown
)

// MediaTags lists the known tags, in a stable order.
var MediaTags = []MediaTag{
	MediaTagSanctions,
	MediaTagPep,
	MediaTagFraud,
	MediaTagCrime,
	MediaTagOther,
}

func MediaTagFrom(s string) MediaTag {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "sanctions":
		return MediaTagSanctions
	case "pep":
		return MediaTagPep
	case "fraud":
		return MediaTagFraud
	case "crime":
		return MediaTagCrime
	case "other":
		return MediaTagOther
	}

	return MediaTagUnknown
}

func (t MediaTag) String() string {
	switch t {
	case MediaTagSanctions:
		return "sanctions"
	case MediaTagPep:
		return "pep"
	case MediaTagFraud:
		return "fraud"
	case MediaTagCrime:
		return "crime"
	case MediaTagOther:
		return "other"
	}

	return "unknown"
}

func (t MediaTag) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

func (t *MediaTag) UnmarshalText(text []byte) error {
	*t = MediaTagFrom(string(text))
	return nil
}

// MediaSignal is an already tagged news article about a screened subject.
type MediaSignal struct {
	ArticleId     string
	Source        string
	Title         string
	PublishedAt   time.Time
	Tags          []MediaTag
	NameMentioned bool
}

// MediaArticle is a raw article as handed over by the feed ingestion, before tagging.
type MediaArticle struct {
	Id          string
	Source      string
	Title       string
	Content     string
	Url         string
	PublishedAt time.Time
}
