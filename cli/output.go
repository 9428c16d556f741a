package cli

import (
	"fmt"
	"io"
	"strings"

	"sociomate/views"

	"github.com/goccy/go-json"
)

func (o *RootOptions) print(w io.Writer, v any, text func(io.Writer)) error {
	if o.Format == "json" {
		data, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(w, string(data))
		return err
	}
	text(w)
	return nil
}

func writePost(w io.Writer, p views.Post) {
	author := "[deleted]"
	if p.User != nil {
		author = p.User.Username
	}
	fmt.Fprintf(w, "%s  @%s  %s\n", p.ID, author, p.CreatedAt.Format("2006-01-02 15:04"))
	fmt.Fprintf(w, "  %s\n", p.Content)
	if p.Image != nil {
		fmt.Fprintf(w, "  image: %s\n", *p.Image)
	}
	fmt.Fprintf(w, "  %d likes, %d comments\n", len(p.Likes), len(p.Comments))
	for _, c := range p.Comments {
		name := "[deleted]"
		if c.User != nil {
			name = c.User.Username
		}
		fmt.Fprintf(w, "    %s @%s: %s\n", c.ID, name, c.Content)
	}
}

func writePosts(w io.Writer, posts []views.Post) {
	if len(posts) == 0 {
		fmt.Fprintln(w, "No posts yet.")
		return
	}
	for i, p := range posts {
		if i > 0 {
			fmt.Fprintln(w)
		}
		writePost(w, p)
	}
}

func writeUser(w io.Writer, u views.User) {
	fmt.Fprintf(w, "%s  @%s  <%s>\n", u.ID, u.Username, u.Email)
	if u.Bio != "" {
		fmt.Fprintf(w, "  %s\n", u.Bio)
	}
	if u.ProfilePicture != nil {
		fmt.Fprintf(w, "  picture: %s\n", *u.ProfilePicture)
	}
	fmt.Fprintf(w, "  followers (%d): %s\n", len(u.Followers), names(u.Followers))
	fmt.Fprintf(w, "  following (%d): %s\n", len(u.Following), names(u.Following))
}

func names(users []views.UserSummary) string {
	out := make([]string, 0, len(users))
	for _, u := range users {
		out = append(out, "@"+u.Username)
	}
	return strings.Join(out, " ")
}
