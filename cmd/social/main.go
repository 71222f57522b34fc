package main

import (
	"bufio"
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/d60-Lab/social-client/internal/app"
	"github.com/d60-Lab/social-client/internal/config"
	"github.com/d60-Lab/social-client/internal/model"
	"github.com/d60-Lab/social-client/internal/validation"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// newApp loads the environment config and wires a client instance. The
// caller must defer a.Close.
func newApp() (*app.App, error) {
	a, err := app.New(config.Load())
	if err != nil {
		return nil, fmt.Errorf("initializing client: %w", err)
	}
	return a, nil
}

func prompt(label string) (string, error) {
	fmt.Fprintf(os.Stderr, "%s: ", label)
	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

func printPost(p model.Post) {
	fmt.Printf("%s  %s  %s\n", p.ID, p.CreatedAt.Format("2006-01-02 15:04"), p.Title)
	fmt.Printf("    %s\n", p.Content)
	for _, img := range p.Images {
		fmt.Printf("    [image] %s (%s)\n", img.Filename, img.ContentType)
	}
}

func printSummary(u model.UserSummary) {
	fmt.Printf("%s  %s %s  <%s>\n", u.ID, u.FirstName, u.LastName, u.Email)
}

var rootCmd = &cobra.Command{
	Use:   "social",
	Short: "Command-line client for the social API",
}

var loginCmd = &cobra.Command{
	Use:   "login EMAIL",
	Short: "Sign in and persist the session",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		password, err := prompt("Password")
		if err != nil {
			return err
		}

		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close(cmd.Context())

		sess, err := a.Login(cmd.Context(), args[0], password)
		if err != nil {
			return err
		}
		fmt.Printf("Logged in as %s (%s)\n", sess.Name, sess.Email)
		return nil
	},
}

var signupCmd = &cobra.Command{
	Use:   "signup EMAIL",
	Short: "Create an account",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		first, _ := cmd.Flags().GetString("first-name")
		last, _ := cmd.Flags().GetString("last-name")
		password, err := prompt("Password")
		if err != nil {
			return err
		}
		confirm, err := prompt("Confirm password")
		if err != nil {
			return err
		}

		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close(cmd.Context())

		sess, err := a.Signup(cmd.Context(), validation.SignupForm{
			FirstName: first, LastName: last,
			Email: args[0], Password: password, ConfirmPassword: confirm,
		})
		if err != nil {
			return err
		}
		if a.ShowWelcome() {
			fmt.Printf("Welcome, %s!\n", sess.FirstName)
		}
		return nil
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Clear the stored session",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close(cmd.Context())

		a.Logout()
		fmt.Println("Logged out.")
		return nil
	},
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the active session",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close(cmd.Context())

		sess := a.Session.Current()
		if sess == nil {
			fmt.Println("Not logged in.")
			return nil
		}
		fmt.Printf("%s  %s  <%s>\n", sess.UserID, sess.Name, sess.Email)
		return nil
	},
}

var feedCmd = &cobra.Command{
	Use:   "feed",
	Short: "Show the home feed",
	RunE: func(cmd *cobra.Command, args []string) error {
		pages, _ := cmd.Flags().GetInt("pages")

		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close(cmd.Context())

		posts, err := a.HomeFeed(cmd.Context())
		if err != nil {
			return err
		}
		for i := 1; i < pages; i++ {
			more, fetched, err := a.MoreFeed(cmd.Context())
			if err != nil {
				return err
			}
			posts = more
			if !fetched {
				break
			}
		}
		if len(posts) == 0 {
			fmt.Println("Feed is empty. Follow someone or post something.")
			return nil
		}
		for _, p := range posts {
			printPost(p)
		}
		return nil
	},
}

var postsCmd = &cobra.Command{
	Use:   "posts [USER_ID]",
	Short: "List all posts, or one user's posts",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close(cmd.Context())

		var posts []model.Post
		if len(args) == 1 {
			page, err := a.UserPosts(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			posts = page.Items
		} else {
			posts, err = a.AllPosts(cmd.Context())
			if err != nil {
				return err
			}
		}
		for _, p := range posts {
			printPost(p)
		}
		return nil
	},
}

var postCmd = &cobra.Command{
	Use:   "post",
	Short: "Create, edit or delete posts",
}

var postCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Publish a post",
	RunE: func(cmd *cobra.Command, args []string) error {
		title, _ := cmd.Flags().GetString("title")
		content, _ := cmd.Flags().GetString("content")
		paths, _ := cmd.Flags().GetStringSlice("image")

		draft := app.Draft{Title: title, Content: content}
		var open []*os.File
		defer func() {
			for _, f := range open {
				f.Close()
			}
		}()
		for _, path := range paths {
			f, err := os.Open(path)
			if err != nil {
				return fmt.Errorf("opening image: %w", err)
			}
			open = append(open, f)
			info, err := f.Stat()
			if err != nil {
				return err
			}
			draft.Images = append(draft.Images, app.DraftImage{
				Filename:    filepath.Base(path),
				ContentType: mime.TypeByExtension(filepath.Ext(path)),
				Size:        info.Size(),
				Data:        f,
			})
		}

		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close(cmd.Context())

		post, err := a.CreatePost(cmd.Context(), draft)
		if err != nil {
			return err
		}
		fmt.Printf("Posted %s\n", post.ID)
		return nil
	},
}

var postEditCmd = &cobra.Command{
	Use:   "edit POST_ID",
	Short: "Edit a post's title and content",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		title, _ := cmd.Flags().GetString("title")
		content, _ := cmd.Flags().GetString("content")

		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close(cmd.Context())

		post, err := a.UpdatePost(cmd.Context(), args[0], title, content)
		if err != nil {
			return err
		}
		fmt.Printf("Updated %s at %s\n", post.ID, post.UpdatedAt.Format(time.RFC3339))
		return nil
	},
}

var postDeleteCmd = &cobra.Command{
	Use:   "delete POST_ID",
	Short: "Delete a post",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close(cmd.Context())

		if err := a.DeletePost(cmd.Context(), args[0]); err != nil {
			return err
		}
		fmt.Println("Deleted.")
		return nil
	},
}

var likeCmd = &cobra.Command{
	Use:   "like POST_ID",
	Short: "Toggle a like on a post",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close(cmd.Context())

		agg, err := a.Engagement(cmd.Context(), []string{args[0]})
		if err != nil {
			return err
		}
		btn := a.NewLikeButton(args[0], agg[args[0]])
		if err := btn.Toggle(cmd.Context()); err != nil {
			return err
		}
		state := btn.State()
		if state.Liked {
			fmt.Printf("Liked (%d likes)\n", state.LikeCount)
		} else {
			fmt.Printf("Unliked (%d likes)\n", state.LikeCount)
		}
		return nil
	},
}

var commentsCmd = &cobra.Command{
	Use:   "comments POST_ID",
	Short: "List a post's comments",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close(cmd.Context())

		comments, err := a.Comments(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		if len(comments) == 0 {
			fmt.Println("No comments yet.")
			return nil
		}
		for _, c := range comments {
			fmt.Printf("%s  %s %s: %s\n", c.ID, c.Author.FirstName, c.Author.LastName, c.Content)
		}
		return nil
	},
}

var commentCmd = &cobra.Command{
	Use:   "comment POST_ID TEXT",
	Short: "Comment on a post",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close(cmd.Context())

		c, err := a.AddComment(cmd.Context(), args[0], args[1])
		if err != nil {
			return err
		}
		fmt.Printf("Comment %s added\n", c.ID)
		return nil
	},
}

var followCmd = &cobra.Command{
	Use:   "follow USER_ID",
	Short: "Toggle following a user",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close(cmd.Context())

		stats, err := a.FollowStats(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		btn := a.NewFollowButton(args[0], stats)
		if err := btn.Toggle(cmd.Context()); err != nil {
			return err
		}
		if btn.State().IsFollowing {
			fmt.Println("Following.")
		} else {
			fmt.Println("Unfollowed.")
		}
		return nil
	},
}

var searchCmd = &cobra.Command{
	Use:   "search QUERY",
	Short: "Search users",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close(cmd.Context())

		page, err := a.SearchUsers(cmd.Context(), args[0], 1)
		if err != nil {
			return err
		}
		if len(page.Items) == 0 {
			fmt.Println("No matches.")
			return nil
		}
		for _, u := range page.Items {
			printSummary(u)
		}
		return nil
	},
}

var suggestedCmd = &cobra.Command{
	Use:   "suggested",
	Short: "Show people you may know",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close(cmd.Context())

		users, err := a.SuggestedUsers(cmd.Context())
		if err != nil {
			return err
		}
		for _, u := range users {
			printSummary(u)
		}
		return nil
	},
}

var profileCmd = &cobra.Command{
	Use:   "profile [USER_ID]",
	Short: "Show a profile (defaults to your own)",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close(cmd.Context())

		userID := ""
		if len(args) == 1 {
			userID = args[0]
		} else if sess := a.Session.Current(); sess != nil {
			userID = sess.UserID
		}
		if userID == "" {
			return fmt.Errorf("log in or pass a user id")
		}

		profile, err := a.Profile(cmd.Context(), userID)
		if err != nil {
			return err
		}
		stats, err := a.FollowStats(cmd.Context(), userID)
		if err != nil {
			return err
		}
		fmt.Printf("%s %s  <%s>\n", profile.FirstName, profile.LastName, profile.Email)
		if profile.Bio != "" {
			fmt.Printf("%s\n", profile.Bio)
		}
		fmt.Printf("%d followers, %d following\n", stats.Followers, stats.Following)
		return nil
	},
}

func init() {
	signupCmd.Flags().String("first-name", "", "First name")
	signupCmd.Flags().String("last-name", "", "Last name")

	feedCmd.Flags().IntP("pages", "n", 1, "Number of feed pages to load")

	postCreateCmd.Flags().String("title", "", "Post title")
	postCreateCmd.Flags().String("content", "", "Post body")
	postCreateCmd.Flags().StringSlice("image", nil, "Image file to attach (repeatable)")
	postEditCmd.Flags().String("title", "", "New title")
	postEditCmd.Flags().String("content", "", "New body")
	postCmd.AddCommand(postCreateCmd)
	postCmd.AddCommand(postEditCmd)
	postCmd.AddCommand(postDeleteCmd)

	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(signupCmd)
	rootCmd.AddCommand(logoutCmd)
	rootCmd.AddCommand(whoamiCmd)
	rootCmd.AddCommand(feedCmd)
	rootCmd.AddCommand(postsCmd)
	rootCmd.AddCommand(postCmd)
	rootCmd.AddCommand(likeCmd)
	rootCmd.AddCommand(commentsCmd)
	rootCmd.AddCommand(commentCmd)
	rootCmd.AddCommand(followCmd)
	rootCmd.AddCommand(searchCmd)
	rootCmd.AddCommand(suggestedCmd)
	rootCmd.AddCommand(profileCmd)
}
