package email

import (
	htmltemplate "html/template"
	"strings"
	"time"

	"news_digest/internal/domain"
)

var digestTemplate = htmltemplate.Must(htmltemplate.New("digest").Funcs(htmltemplate.FuncMap{
	"upper": strings.ToUpper,
	"inc":   func(i int) int { return i + 1 },
}).Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="UTF-8">
<meta name="viewport" content="width=device-width, initial-scale=1.0">
<style>
body { font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, 'Helvetica Neue', Arial, sans-serif; line-height: 1.6; color: #333; max-width: 650px; margin: 0 auto; padding: 0; background-color: #f5f5f5; }
.container { background-color: #ffffff; margin: 20px; border-radius: 12px; overflow: hidden; box-shadow: 0 2px 8px rgba(0,0,0,0.1); }
.header { background: linear-gradient(135deg, #667eea 0%, #764ba2 100%); color: white; padding: 40px 30px; text-align: center; }
.header h1 { margin: 0 0 10px 0; font-size: 28px; font-weight: 700; }
.header .date { font-size: 14px; opacity: 0.9; }
.content { padding: 30px; }
.greeting { font-size: 18px; font-weight: 600; color: #1a1a1a; margin-bottom: 15px; }
.introduction { font-size: 16px; color: #4a4a4a; margin-bottom: 30px; line-height: 1.7; }
.article { background: #f9fafb; border-left: 4px solid #667eea; padding: 20px; margin-bottom: 20px; border-radius: 8px; position: relative; }
.article-number { position: absolute; top: 20px; right: 20px; background: #667eea; color: white; width: 36px; height: 36px; border-radius: 50%; display: inline-flex; align-items: center; justify-content: center; font-size: 14px; font-weight: 700; line-height: 1; }
.article-title { font-size: 18px; font-weight: 600; color: #1a1a1a; margin: 0 40px 10px 0; line-height: 1.4; }
.article-meta { display: flex; gap: 15px; margin-bottom: 12px; font-size: 13px; }
.article-type { background: #e0e7ff; color: #4c51bf; padding: 3px 10px; border-radius: 12px; font-weight: 600; text-transform: uppercase; font-size: 11px; }
.article-score { color: #666; font-weight: 500; }
.article-summary { color: #4a4a4a; margin: 12px 0; line-height: 1.6; }
.read-more { display: inline-block; color: #667eea; text-decoration: none; font-weight: 600; font-size: 14px; margin-top: 8px; }
.footer { background: #f9fafb; padding: 25px 30px; text-align: center; color: #666; font-size: 13px; border-top: 1px solid #e5e5e5; }
.footer p { margin: 5px 0; }
</style>
</head>
<body>
<div class="container">
<div class="header">
<h1>🤖 AI News Digest</h1>
<div class="date">{{.Date}}</div>
</div>
<div class="content">
<div class="greeting">{{.Digest.Introduction.Greeting}}</div>
<div class="introduction">{{.Digest.Introduction.Introduction}}</div>
{{range $i, $a := .Digest.Articles}}
<div class="article">
<div class="article-number">#{{inc $i}}</div>
<h2 class="article-title">{{$a.Title}}</h2>
<div class="article-meta">
<span class="article-type">{{upper $a.ArticleType}}</span>
<span class="article-score">Relevance: {{printf "%.1f" $a.RelevanceScore}}/10</span>
</div>
<p class="article-summary">{{$a.Summary}}</p>
<a href="{{$a.URL}}" class="read-more">Read Full Article →</a>
</div>
{{end}}
</div>
<div class="footer">
<p>You're receiving this because you subscribed to AI News Digest.</p>
<p>© 2025 AI News Digest. All rights reserved.</p>
</div>
</div>
</body>
</html>
`))

var confirmationTemplate = htmltemplate.Must(htmltemplate.New("confirmation").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="UTF-8">
<meta name="viewport" content="width=device-width, initial-scale=1.0">
<style>
body { font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, 'Helvetica Neue', Arial, sans-serif; line-height: 1.6; color: #333; max-width: 600px; margin: 0 auto; padding: 20px; }
.header { background: linear-gradient(135deg, #667eea 0%, #764ba2 100%); color: white; padding: 30px; border-radius: 10px 10px 0 0; text-align: center; }
.content { background: #f9fafb; padding: 30px; border-radius: 0 0 10px 10px; }
.footer { text-align: center; margin-top: 30px; color: #666; font-size: 14px; }
h1 { margin: 0; font-size: 28px; }
.emoji { font-size: 48px; margin-bottom: 10px; }
</style>
</head>
<body>
<div class="header">
<div class="emoji">🤖</div>
<h1>Welcome to AI News Digest!</h1>
</div>
<div class="content">
<p>Hey {{.Name}},</p>
<p>Thanks for subscribing to our daily AI news digest! You're now part of an exclusive community that stays ahead of the curve in artificial intelligence.</p>
<p><strong>What to expect:</strong></p>
<ul>
<li>📰 Daily curated AI news from top sources</li>
<li>🎯 Personalized content based on your interests</li>
<li>⚡ Quick summaries to save you time</li>
<li>🔗 Direct links to full articles and videos</li>
</ul>
<p>Your first digest will arrive in your inbox tomorrow morning. Get ready to stay informed!</p>
<p>If you have any questions or feedback, feel free to reply to this email.</p>
<p>Best regards,<br><strong>The AI News Digest Team</strong></p>
</div>
<div class="footer">
<p>You're receiving this because you subscribed to AI News Digest.</p>
<p>© 2025 AI News Digest. All rights reserved.</p>
</div>
</body>
</html>
`))

// RenderDigestHTML renders the full digest email body.
func RenderDigestHTML(digest domain.EmailDigest, date time.Time, location *time.Location) (string, error) {
	var sb strings.Builder
	err := digestTemplate.Execute(&sb, struct {
		Date   string
		Digest domain.EmailDigest
	}{
		Date:   date.In(location).Format(dateLayout),
		Digest: digest,
	})
	if err != nil {
		return "", err
	}
	return sb.String(), nil
}

// RenderConfirmationHTML renders the subscription welcome email body.
func RenderConfirmationHTML(name string) (string, error) {
	var sb strings.Builder
	if err := confirmationTemplate.Execute(&sb, struct{ Name string }{Name: name}); err != nil {
		return "", err
	}
	return sb.String(), nil
}
