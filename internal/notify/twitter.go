package notify

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/dghubble/go-twitter/twitter" //nolint:staticcheck // Using stable v1.1 API
	"github.com/dghubble/oauth1"
	"github.com/troutline/stocking-events/internal/event"
)

// TwitterAnnouncer tweets newly discovered stockings on the project
// account. Announcing is best-effort and independent of subscriber push
// delivery.
type TwitterAnnouncer struct {
	client *twitter.Client
}

// NewTwitterAnnouncer creates an announcer using environment variables
// Required environment variables:
// - TWITTER_API_KEY
// - TWITTER_API_SECRET
// - TWITTER_ACCESS_TOKEN
// - TWITTER_ACCESS_SECRET
func NewTwitterAnnouncer() (*TwitterAnnouncer, error) {
	apiKey := os.Getenv("TWITTER_API_KEY")
	apiSecret := os.Getenv("TWITTER_API_SECRET")
	accessToken := os.Getenv("TWITTER_ACCESS_TOKEN")
	accessSecret := os.Getenv("TWITTER_ACCESS_SECRET")

	if apiKey == "" || apiSecret == "" || accessToken == "" || accessSecret == "" {
		return nil, fmt.Errorf("missing required Twitter credentials in environment variables")
	}

	config := oauth1.NewConfig(apiKey, apiSecret)
	token := oauth1.NewToken(accessToken, accessSecret)
	httpClient := config.Client(oauth1.NoContext, token)
	client := twitter.NewClient(httpClient)

	return &TwitterAnnouncer{client: client}, nil
}

// Announce posts one tweet per new stocking.
func (a *TwitterAnnouncer) Announce(events []*event.Event) error {
	for i, evt := range events {
		tweet := formatTweet(evt)

		_, _, err := a.client.Statuses.Update(tweet, nil)
		if err != nil {
			return fmt.Errorf("failed to post tweet for event %s: %w", evt.ID, err)
		}

		// Rate limiting: wait between tweets
		if i < len(events)-1 {
			time.Sleep(2 * time.Second)
		}
	}

	return nil
}

// formatTweet formats a stocking event as a tweet
func formatTweet(evt *event.Event) string {
	tweet := "🎣 Fresh fish stocking!\n\n"
	tweet += fmt.Sprintf("📍 %s — %s County\n", evt.WaterName, evt.County)
	tweet += fmt.Sprintf("🐟 %s %s\n", evt.Species, quantityTweetSuffix(evt))

	if evt.AvgLength != nil {
		tweet += fmt.Sprintf("📏 %s\" average\n", strconv.FormatFloat(*evt.AvgLength, 'f', -1, 64))
	}

	tweet += fmt.Sprintf("📅 %s\n", evt.DateStocked)
	tweet += "\n#FishStocking #Fishing"

	// Twitter limit is 280 characters
	if len(tweet) > 280 {
		tweet = tweet[:277] + "..."
	}

	return tweet
}

func quantityTweetSuffix(evt *event.Event) string {
	if evt.Quantity == nil {
		return ""
	}
	return fmt.Sprintf("× %d", *evt.Quantity)
}
