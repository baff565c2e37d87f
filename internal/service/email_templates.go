package service

import (
	"fmt"
	"html"
)

func greeting(name string) string {
	if name == "" {
		return "Hi,"
	}
	return fmt.Sprintf("Hi %s,", name)
}

func goalReviewedEmailTemplate(name, goalTitle, status, feedback, feedbackHTML, goalURL, appName string) (string, string, string) {
	subject := fmt.Sprintf("Your goal %q was %s", goalTitle, status)

	next := "You can start working on it now."
	if status == "rejected" {
		next = "Edit the goal to address the feedback and it will go back to your teacher for review."
	}

	text := fmt.Sprintf(`%s

Your teacher %s your SMART goal "%s".
%s
%s

Open the goal:
%s

Best,
The %s Team`, greeting(name), status, goalTitle, feedbackText(feedback), next, goalURL, appName)

	body := fmt.Sprintf(`<p>%s</p>
<p>Your teacher %s your SMART goal <strong>%s</strong>.</p>
%s
<p>%s</p>
<p><a href="%s">Open the goal</a></p>
<p>Best,<br>The %s Team</p>`,
		html.EscapeString(greeting(name)), status, html.EscapeString(goalTitle),
		feedbackBlock(feedbackHTML), next, goalURL, html.EscapeString(appName))

	return subject, text, body
}

func feedbackText(feedback string) string {
	if feedback == "" {
		return ""
	}
	return fmt.Sprintf("\nFeedback:\n%s\n", feedback)
}

func feedbackBlock(feedbackHTML string) string {
	if feedbackHTML == "" {
		return ""
	}
	return `<p>Feedback:</p><blockquote>` + feedbackHTML + `</blockquote>`
}

func goalAchievedEmailTemplate(name, goalTitle, goalURL, appName string) (string, string, string) {
	subject := fmt.Sprintf("Goal achieved: %s", goalTitle)

	text := fmt.Sprintf(`%s

Congratulations! Your SMART goal "%s" is marked as achieved.

See it here:
%s

Best,
The %s Team`, greeting(name), goalTitle, goalURL, appName)

	body := fmt.Sprintf(`<p>%s</p>
<p>Congratulations! Your SMART goal <strong>%s</strong> is marked as achieved.</p>
<p><a href="%s">See it here</a></p>
<p>Best,<br>The %s Team</p>`,
		html.EscapeString(greeting(name)), html.EscapeString(goalTitle), goalURL, html.EscapeString(appName))

	return subject, text, body
}
