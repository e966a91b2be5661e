package locale

import (
	"fmt"
	"strings"
	"time"
)

type Catalog struct {
	Name string

	Unknown       string
	NoTitle       string
	NoDescription string

	CaptionsAvailable     string
	AutoCaptionsAvailable string
	CaptionsList          string
	AutoCaptionsList      string
	NoCaptions            string

	HeadingOverview      string
	HeadingThumbnail     string
	HeadingTags          string
	HeadingDescription   string
	HeadingCaptions      string
	HeadingSummary       string
	TableField           string
	TableValue           string
	FieldChannel         string
	FieldUploaded        string
	FieldDuration        string
	FieldViews           string
	FieldLikes           string
	FieldComments        string
	FieldSourceURL       string
	ThumbnailAlt         string
	TruncationNotice     string
	SummaryPrompt        string
	ExtractedAtLabel     string
	StatusExtracting     string
	StatusTitle          string
	StatusChannel        string
	StatusDuration       string
	StatusViews          string
	StatusSaved          string
	StatusCouldNotFetch  string
	UsageExampleHeading  string
	UsageOutputDirectory string

	longDate func(t time.Time) string
}

func (c *Catalog) LongDate(t time.Time) string {
	return c.longDate(t)
}

func (c *Catalog) FormatCaptionsAvailable(lang string) string {
	return fmt.Sprintf(c.CaptionsAvailable, lang)
}

func (c *Catalog) FormatAutoCaptionsAvailable(lang string) string {
	return fmt.Sprintf(c.AutoCaptionsAvailable, lang)
}

func (c *Catalog) FormatCaptionsList(langs []string) string {
	return fmt.Sprintf(c.CaptionsList, strings.Join(langs, ", "))
}

func (c *Catalog) FormatAutoCaptionsList(langs []string) string {
	return fmt.Sprintf(c.AutoCaptionsList, strings.Join(langs, ", "))
}

var English = &Catalog{
	Name: "en",

	Unknown:       "unknown",
	NoTitle:       "no title",
	NoDescription: "no description",

	CaptionsAvailable:     "[%s captions available]",
	AutoCaptionsAvailable: "[%s auto-generated captions available]",
	CaptionsList:          "[captions available: %s]",
	AutoCaptionsList:      "[auto-generated captions available: %s]",
	NoCaptions:            "[no captions]",

	HeadingOverview:      "Overview",
	HeadingThumbnail:     "Thumbnail",
	HeadingTags:          "Tags",
	HeadingDescription:   "Description",
	HeadingCaptions:      "Captions / Transcript",
	HeadingSummary:       "AI Summary Request",
	TableField:           "Field",
	TableValue:           "Value",
	FieldChannel:         "Channel",
	FieldUploaded:        "Uploaded",
	FieldDuration:        "Duration",
	FieldViews:           "Views",
	FieldLikes:           "Likes",
	FieldComments:        "Comments",
	FieldSourceURL:       "Source URL",
	ThumbnailAlt:         "thumbnail",
	TruncationNotice:     "... (transcript truncated because it is too long)",
	SummaryPrompt:        "Please summarize the content of this video.",
	ExtractedAtLabel:     "Extracted at",
	StatusExtracting:     "Extracting video information: %s",
	StatusTitle:          "Title: %s",
	StatusChannel:        "Channel: %s",
	StatusDuration:       "Duration: %s",
	StatusViews:          "Views: %s",
	StatusSaved:          "Saved: %s",
	StatusCouldNotFetch:  "could not fetch video information",
	UsageExampleHeading:  "Examples:",
	UsageOutputDirectory: "output-directory",

	longDate: func(t time.Time) string {
		return t.Format("January 2, 2006")
	},
}

var Korean = &Catalog{
	Name: "ko",

	Unknown:       "알 수 없음",
	NoTitle:       "제목 없음",
	NoDescription: "설명 없음",

	CaptionsAvailable:     "[%s 자막 사용 가능]",
	AutoCaptionsAvailable: "[%s 자동 생성 자막 사용 가능]",
	CaptionsList:          "[자막 사용 가능: %s]",
	AutoCaptionsList:      "[자동 생성 자막 사용 가능: %s]",
	NoCaptions:            "[자막 없음]",

	HeadingOverview:      "기본 정보",
	HeadingThumbnail:     "썸네일",
	HeadingTags:          "태그",
	HeadingDescription:   "설명",
	HeadingCaptions:      "자막/스크립트",
	HeadingSummary:       "AI 요약 요청",
	TableField:           "항목",
	TableValue:           "내용",
	FieldChannel:         "채널",
	FieldUploaded:        "업로드",
	FieldDuration:        "길이",
	FieldViews:           "조회수",
	FieldLikes:           "좋아요",
	FieldComments:        "댓글 수",
	FieldSourceURL:       "원본 URL",
	ThumbnailAlt:         "썸네일",
	TruncationNotice:     "... (자막이 너무 길어 일부만 표시됩니다)",
	SummaryPrompt:        "이 영상의 내용을 요약해주세요.",
	ExtractedAtLabel:     "추출 시간",
	StatusExtracting:     "영상 정보 추출 중: %s",
	StatusTitle:          "제목: %s",
	StatusChannel:        "채널: %s",
	StatusDuration:       "길이: %s",
	StatusViews:          "조회수: %s",
	StatusSaved:          "저장됨: %s",
	StatusCouldNotFetch:  "영상 정보를 가져올 수 없습니다",
	UsageExampleHeading:  "예시:",
	UsageOutputDirectory: "출력_디렉토리",

	longDate: func(t time.Time) string {
		return t.Format("2006년 01월 02일")
	},
}

var catalogs = map[string]*Catalog{
	English.Name: English,
	Korean.Name:  Korean,
}

// Lookup finds a catalog by language code; regional suffixes are ignored,
// so "ko-KR" selects the Korean catalog.
func Lookup(name string) (*Catalog, error) {
	base := strings.ToLower(strings.TrimSpace(name))
	if i := strings.IndexAny(base, "-_"); i >= 0 {
		base = base[:i]
	}

	if c, ok := catalogs[base]; ok {
		return c, nil
	}

	return nil, fmt.Errorf("locale.Lookup: unsupported locale %q", name)
}
