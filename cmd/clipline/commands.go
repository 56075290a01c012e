package main

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"clipline/internal/api"
	"clipline/internal/catalog"
	"clipline/internal/query"
)

func parseVideoID(arg string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(arg), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid video id %q", arg)
	}
	return id, nil
}

func newAddCommand(ctx *commandContext) *cobra.Command {
	var title string
	var description string
	var mediaURL string

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Register an uploaded video with the pipeline",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := ctx.client()
			if err != nil {
				return err
			}
			var video api.Video
			err = client.post("/api/videos", api.CreateVideoRequest{
				Title:       title,
				Description: description,
				MediaURL:    mediaURL,
			}, &video)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "added video %d (%s)\n", video.ID, video.Title)
			return nil
		},
	}
	cmd.Flags().StringVar(&title, "title", "", "Video title")
	cmd.Flags().StringVar(&description, "description", "", "Video description")
	cmd.Flags().StringVar(&mediaURL, "url", "", "Playable media URL")
	_ = cmd.MarkFlagRequired("url")
	return cmd
}

func newListCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List your videos and their stage statuses",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := ctx.client()
			if err != nil {
				return err
			}
			var payload api.VideoListResponse
			if err := client.get("/api/videos", &payload); err != nil {
				return err
			}
			rows := make([][]string, len(payload.Videos))
			for i, video := range payload.Videos {
				rows[i] = []string{
					strconv.FormatInt(video.ID, 10),
					video.Title,
					string(video.TranscriptionStatus),
					string(video.VisionStatus),
					video.CreatedAt.Local().Format("2006-01-02 15:04"),
				}
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"ID", "Title", "Transcription", "Vision", "Added"},
				rows,
				[]columnAlignment{alignRight, alignLeft, alignLeft, alignLeft, alignLeft},
			))
			return nil
		},
	}
}

func newRemoveCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "remove <video-id>",
		Short: "Delete a video and its transcript and tags",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseVideoID(args[0])
			if err != nil {
				return err
			}
			client, err := ctx.client()
			if err != nil {
				return err
			}
			if err := client.delete(fmt.Sprintf("/api/videos/%d", id)); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "removed video %d\n", id)
			return nil
		},
	}
}

func newStatusCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "status <video-id>",
		Short: "Show a video's composed pipeline status",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseVideoID(args[0])
			if err != nil {
				return err
			}
			client, err := ctx.client()
			if err != nil {
				return err
			}
			var status query.Status
			if err := client.get(fmt.Sprintf("/api/videos/%d/status", id), &status); err != nil {
				return err
			}
			rows := [][]string{
				{"Transcription", string(status.TranscriptionStatus)},
				{"Vision", string(status.VisionStatus)},
				{"Tags", strconv.Itoa(status.TagCount)},
				{"Transcript", yesNo(status.HasTranscript)},
				{"Processing", yesNo(status.IsProcessing)},
				{"Completed", yesNo(status.IsCompleted)},
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"Field", "Value"},
				rows,
				[]columnAlignment{alignLeft, alignLeft},
			))
			return nil
		},
	}
}

func newProcessCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "process <video-id>",
		Short: "Start whichever stages have not yet run",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseVideoID(args[0])
			if err != nil {
				return err
			}
			client, err := ctx.client()
			if err != nil {
				return err
			}
			var resp api.ProcessResponse
			if err := client.post(fmt.Sprintf("/api/videos/%d/process", id), nil, &resp); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "dispatched: transcription=%v vision=%v\n",
				resp.Dispatched.Transcription, resp.Dispatched.Vision)
			return nil
		},
	}
}

func newTranscribeCommand(ctx *commandContext) *cobra.Command {
	var languages []string

	cmd := &cobra.Command{
		Use:   "transcribe <video-id>",
		Short: "Start the transcription stage",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseVideoID(args[0])
			if err != nil {
				return err
			}
			client, err := ctx.client()
			if err != nil {
				return err
			}
			var resp api.StartResponse
			err = client.post(fmt.Sprintf("/api/videos/%d/transcription", id),
				api.StartTranscriptionRequest{Languages: languages}, &resp)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "video %d: %s\n", resp.VideoID, resp.Status)
			return nil
		},
	}
	cmd.Flags().StringSliceVar(&languages, "lang", nil, "Language codes to transcribe (repeatable)")
	return cmd
}

func newVisionCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "vision <video-id>",
		Short: "Start the vision-tagging stage",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseVideoID(args[0])
			if err != nil {
				return err
			}
			client, err := ctx.client()
			if err != nil {
				return err
			}
			var resp api.StartResponse
			if err := client.post(fmt.Sprintf("/api/videos/%d/vision", id), nil, &resp); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "video %d: %s\n", resp.VideoID, resp.Status)
			return nil
		},
	}
}

func newSearchCommand(ctx *commandContext) *cobra.Command {
	var typeFilter string

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Search your videos by title, description, transcript, and tags",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := ctx.client()
			if err != nil {
				return err
			}
			path := "/api/search?q=" + url.QueryEscape(strings.Join(args, " "))
			if typeFilter != "" {
				path += "&type=" + url.QueryEscape(typeFilter)
			}
			var payload api.SearchResponse
			if err := client.get(path, &payload); err != nil {
				return err
			}
			rows := make([][]string, len(payload.Results))
			for i, result := range payload.Results {
				rows[i] = []string{
					strconv.FormatInt(result.Video.ID, 10),
					result.Video.Title,
					strconv.FormatFloat(result.Score, 'f', 1, 64),
				}
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"ID", "Title", "Score"},
				rows,
				[]columnAlignment{alignRight, alignLeft, alignRight},
			))
			return nil
		},
	}
	cmd.Flags().StringVar(&typeFilter, "type", "", "Restrict matching to tags of this type")
	return cmd
}

func newLanguagesCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "languages",
		Short: "List the transcription provider's supported languages",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := ctx.client()
			if err != nil {
				return err
			}
			var payload api.LanguagesResponse
			if err := client.get("/api/languages", &payload); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), strings.Join(payload.Languages, "\n"))
			return nil
		},
	}
}

func newHealthCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Show daemon health and per-status video counts",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := ctx.client()
			if err != nil {
				return err
			}
			var payload api.HealthResponse
			if err := client.get("/api/health", &payload); err != nil {
				return err
			}
			rows := make([][]string, 0, 5)
			rows = append(rows, []string{"total", strconv.Itoa(payload.Videos.Total), ""})
			for _, status := range catalog.AllStatuses() {
				rows = append(rows, []string{
					string(status),
					strconv.Itoa(payload.Videos.Transcription[status]),
					strconv.Itoa(payload.Videos.Vision[status]),
				})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"Status", "Transcription", "Vision"},
				rows,
				[]columnAlignment{alignLeft, alignRight, alignRight},
			))
			return nil
		},
	}
}

func yesNo(v bool) string {
	if v {
		return "yes"
	}
	return "no"
}
