package fetch

import (
	"fmt"

	"github.com/mmcdole/gofeed"
	"github.com/mmcdole/gofeed/rss"
)

// rssTranslator extends the stock RSS translation with the channel-level
// <ttl> element, which the default translator drops on the floor. Source
// adapters read it back as a poll-interval hint via Feed.Custom["ttl"].
type rssTranslator struct {
	defaultTranslator *gofeed.DefaultRSSTranslator
}

func newRSSTranslator() *rssTranslator {
	return &rssTranslator{defaultTranslator: &gofeed.DefaultRSSTranslator{}}
}

func (t *rssTranslator) Translate(feed interface{}) (*gofeed.Feed, error) {
	rssFeed, ok := feed.(*rss.Feed)
	if !ok {
		return nil, fmt.Errorf("feed did not match expected type of *rss.Feed")
	}

	out, err := t.defaultTranslator.Translate(rssFeed)
	if err != nil {
		return nil, err
	}

	if rssFeed.TTL != "" {
		if out.Custom == nil {
			out.Custom = make(map[string]string)
		}
		out.Custom["ttl"] = rssFeed.TTL
	}
	return out, nil
}
