package ytdirect

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/Jeffail/gabs/v2"
	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"fknsrs.biz/p/ytreport/internal/ctxhttpclient"
	"fknsrs.biz/p/ytreport/internal/ptr"
	"fknsrs.biz/p/ytreport/internal/timeutil"
	"fknsrs.biz/p/ytreport/internal/video"
	"fknsrs.biz/p/ytreport/internal/ytutil"
)

const (
	DefaultBaseURL = "https://www.youtube.com"
	UserAgent      = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0 Safari/537.36"

	playerResponseMarker = "ytInitialPlayerResponse ="
)

// Client reads video data straight from watch pages.
type Client struct {
	BaseURL string
}

func New() *Client {
	return &Client{BaseURL: DefaultBaseURL}
}

func (c *Client) watchURL(id string) string {
	base := c.BaseURL
	if base == "" {
		base = DefaultBaseURL
	}

	return strings.TrimSuffix(base, "/") + "/watch?v=" + url.QueryEscape(id)
}

func getDocument(ctx context.Context, u string) (*goquery.Document, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("ytdirect.getDocument: %w", err)
	}

	req.Header.Set("User-Agent", UserAgent)
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")
	// skips the cookie consent interstitial served to some regions
	req.AddCookie(&http.Cookie{Name: "CONSENT", Value: "YES+"})

	res, err := ctxhttpclient.GetHTTPClient(ctx).Do(req)
	if err != nil {
		return nil, fmt.Errorf("ytdirect.getDocument: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("ytdirect.getDocument: status code: %d", res.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(res.Body)
	if err != nil {
		return nil, fmt.Errorf("ytdirect.getDocument: %w", err)
	}

	return doc, nil
}

type CaptionTrack struct {
	BaseURL      string
	LanguageCode string
	Name         string
	Kind         string
}

// Automatic reports whether the track was generated by speech recognition.
func (t CaptionTrack) Automatic() bool {
	return t.Kind == "asr"
}

type Video struct {
	ID              string
	ChannelID       string
	Title           string
	Author          string
	OwnerProfileURL string
	Description     string
	PublishDate     string
	UploadDate      string
	Category        string
	ThumbnailURL    string
	Keywords        []string
	LengthSeconds   *int64
	ViewCount       *int64
	CaptionTracks   []CaptionTrack
}

func (c *Client) GetVideo(ctx context.Context, id string) (*Video, error) {
	doc, err := getDocument(ctx, c.watchURL(id))
	if err != nil {
		return nil, fmt.Errorf("ytdirect.GetVideo: %w", err)
	}

	var v Video

	for _, node := range doc.Find("script").Nodes {
		if node.FirstChild == nil || node.FirstChild.Type != html.TextNode {
			continue
		}

		jsContent := node.FirstChild.Data

		idx := strings.Index(jsContent, playerResponseMarker)
		if idx < 0 {
			continue
		}

		blob := extractJSONObject(jsContent[idx+len(playerResponseMarker):])
		if blob == "" {
			continue
		}

		j, err := gabs.ParseJSON([]byte(blob))
		if err != nil {
			return nil, fmt.Errorf("ytdirect.GetVideo: %w", err)
		}

		readPlayerResponse(j, &v)

		break
	}

	if v.ID == "" {
		return nil, fmt.Errorf("ytdirect.GetVideo: could not find suitable data in page")
	}

	if v.LengthSeconds == nil {
		if content, ok := doc.Find("meta[itemprop=duration]").Attr("content"); ok {
			if d, err := timeutil.ParseDayTimeDuration(content); err == nil && d > 0 {
				v.LengthSeconds = ptr.Int64(d.Seconds())
			}
		}
	}

	return &v, nil
}

const (
	videoIDPath             = "videoDetails.videoId"
	videoChannelIDPath      = "videoDetails.channelId"
	videoAuthorPath         = "videoDetails.author"
	videoLengthPath         = "videoDetails.lengthSeconds"
	videoViewCountPath      = "videoDetails.viewCount"
	videoKeywordsPath       = "videoDetails.keywords"
	videoShortDescPath      = "videoDetails.shortDescription"
	videoDetailsTitlePath   = "videoDetails.title"
	videoDetailsThumbsPath  = "videoDetails.thumbnail.thumbnails"
	videoTitlePath          = "microformat.playerMicroformatRenderer.title.simpleText"
	videoDescriptionPath    = "microformat.playerMicroformatRenderer.description.simpleText"
	videoPublishDatePath    = "microformat.playerMicroformatRenderer.publishDate"
	videoUploadDatePath     = "microformat.playerMicroformatRenderer.uploadDate"
	videoCategoryPath       = "microformat.playerMicroformatRenderer.category"
	videoOwnerURLPath       = "microformat.playerMicroformatRenderer.ownerProfileUrl"
	videoMicroLengthPath    = "microformat.playerMicroformatRenderer.lengthSeconds"
	videoMicroViewCountPath = "microformat.playerMicroformatRenderer.viewCount"
	videoMicroThumbsPath    = "microformat.playerMicroformatRenderer.thumbnail.thumbnails"
	captionTracksPath       = "captions.playerCaptionsTracklistRenderer.captionTracks"
	captionNamePath         = "name.simpleText"
	captionNameRunsPath     = "name.runs.0.text"
)

func readPlayerResponse(j *gabs.Container, v *Video) {
	v.ID = firstString(j, videoIDPath)
	v.ChannelID = firstString(j, videoChannelIDPath)
	v.Title = firstString(j, videoTitlePath, videoDetailsTitlePath)
	v.Author = firstString(j, videoAuthorPath)
	v.OwnerProfileURL = firstString(j, videoOwnerURLPath)
	v.Description = firstString(j, videoDescriptionPath, videoShortDescPath)
	v.PublishDate = firstString(j, videoPublishDatePath)
	v.UploadDate = firstString(j, videoUploadDatePath)
	v.Category = firstString(j, videoCategoryPath)
	v.LengthSeconds = firstInt(j, videoLengthPath, videoMicroLengthPath)
	v.ViewCount = firstInt(j, videoViewCountPath, videoMicroViewCountPath)

	for _, path := range []string{videoDetailsThumbsPath, videoMicroThumbsPath} {
		if thumbs := j.Path(path).Children(); len(thumbs) > 0 {
			// largest rendition comes last
			if s, ok := thumbs[len(thumbs)-1].Path("url").Data().(string); ok {
				v.ThumbnailURL = s
				break
			}
		}
	}

	for _, keyword := range j.Path(videoKeywordsPath).Children() {
		if s, ok := keyword.Data().(string); ok {
			v.Keywords = append(v.Keywords, s)
		}
	}

	for _, track := range j.Path(captionTracksPath).Children() {
		t := CaptionTrack{
			BaseURL:      firstString(track, "baseUrl"),
			LanguageCode: firstString(track, "languageCode"),
			Name:         firstString(track, captionNamePath, captionNameRunsPath),
			Kind:         firstString(track, "kind"),
		}

		if t.BaseURL == "" || t.LanguageCode == "" {
			continue
		}

		v.CaptionTracks = append(v.CaptionTracks, t)
	}
}

func firstString(j *gabs.Container, paths ...string) string {
	for _, path := range paths {
		if !j.ExistsP(path) {
			continue
		}

		if s, ok := j.Path(path).Data().(string); ok && s != "" {
			return s
		}
	}

	return ""
}

// firstInt reads a counter that the player response encodes as a string.
func firstInt(j *gabs.Container, paths ...string) *int64 {
	for _, path := range paths {
		if !j.ExistsP(path) {
			continue
		}

		switch d := j.Path(path).Data().(type) {
		case string:
			if n, err := strconv.ParseInt(d, 10, 64); err == nil && n >= 0 {
				return ptr.Int64(n)
			}
		case float64:
			if d >= 0 {
				return ptr.Int64(int64(d))
			}
		}
	}

	return nil
}

// extractJSONObject returns the first balanced {...} object in s, skipping
// braces inside string literals.
func extractJSONObject(s string) string {
	start := strings.IndexByte(s, '{')
	if start < 0 {
		return ""
	}

	depth := 0
	inString := false
	escaped := false

	for i := start; i < len(s); i++ {
		c := s[i]

		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}

		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return s[start : i+1]
			}
		}
	}

	return ""
}

// compactDate turns the microformat's ISO dates ("2009-10-24" or
// "2009-10-24T23:57:33-07:00") into YYYYMMDD. Anything else is returned
// unchanged.
func compactDate(s string) string {
	if len(s) < 10 {
		return s
	}

	t, err := time.Parse("2006-01-02", s[:10])
	if err != nil {
		return s
	}

	return t.Format("20060102")
}

// Record converts the scraped page data into a video record for url.
func (v *Video) Record(u string, listCaptions bool) *video.Record {
	channelURL := v.OwnerProfileURL
	if channelURL == "" {
		channelURL = ytutil.ChannelURL(v.ChannelID)
	}

	uploadDate := v.UploadDate
	if uploadDate == "" {
		uploadDate = v.PublishDate
	}

	r := &video.Record{
		URL:             u,
		VideoID:         v.ID,
		Title:           v.Title,
		Channel:         v.Author,
		ChannelURL:      channelURL,
		Description:     v.Description,
		ThumbnailURL:    v.ThumbnailURL,
		Tags:            v.Keywords,
		DurationSeconds: v.LengthSeconds,
		ViewCount:       v.ViewCount,
		UploadDate:      compactDate(uploadDate),
	}

	if v.Category != "" {
		r.Categories = []string{v.Category}
	}

	if listCaptions {
		for _, t := range v.CaptionTracks {
			if t.Automatic() {
				r.Captions.Automatic = appendUnique(r.Captions.Automatic, t.LanguageCode)
			} else {
				r.Captions.Declared = appendUnique(r.Captions.Declared, t.LanguageCode)
			}
		}
	}

	return r
}

func appendUnique(a []string, s string) []string {
	for _, e := range a {
		if e == s {
			return a
		}
	}

	return append(a, s)
}

// Resolve implements the metadata provider contract on top of the watch
// page. Like and comment counts are not present in the page data and stay
// empty.
func (c *Client) Resolve(ctx context.Context, u string, opts video.ResolveOptions) (*video.Record, error) {
	id, err := ytutil.ExtractVideoID(u)
	if err != nil {
		return nil, video.NewExtractionError(u, fmt.Errorf("ytdirect.Resolve: %w", err))
	}

	v, err := c.GetVideo(ctx, id)
	if err != nil {
		return nil, video.NewExtractionError(u, fmt.Errorf("ytdirect.Resolve: %w", err))
	}

	return v.Record(u, opts.ListCaptionTracks), nil
}
