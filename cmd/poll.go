package cmd

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/briandowns/spinner"
	"github.com/spf13/cobra"

	"github.com/operon-project/lropoll/pkg/logger"
	"github.com/operon-project/lropoll/pkg/poller"
	"github.com/operon-project/lropoll/pkg/serializer"
	"github.com/operon-project/lropoll/pkg/strategy"
	"github.com/operon-project/lropoll/pkg/transport"
)

var (
	pollURL         string
	pollMethod      string
	pollBody        string
	pollResourceURL string
	pollTimeout     time.Duration
)

func getPollCmd() *cobra.Command {
	pollCmd := &cobra.Command{
		Use:   "poll",
		Short: "Start a long running operation and poll it to completion",
		Long: `Issues the initiating request, selects the polling strategy the
response advertises, and polls until the operation reaches a terminal
state. Prints the final resource body on success.`,
		RunE: runPoll,
	}

	pollCmd.Flags().StringVar(&pollURL, "url", "", "URL of the request that starts the operation")
	pollCmd.Flags().StringVar(&pollMethod, "method", http.MethodPut, "HTTP method of the initiating request")
	pollCmd.Flags().StringVar(&pollBody, "request-body", "", "Body of the initiating request")
	pollCmd.Flags().
		StringVar(&pollResourceURL, "resource-url", "", "URL of the resource the operation acts on (defaults to --url)")
	pollCmd.Flags().DurationVar(&pollTimeout, "timeout", 30*time.Minute, "Give up after this long")
	_ = pollCmd.MarkFlagRequired("url")

	return pollCmd
}

func runPoll(cmd *cobra.Command, args []string) error {
	l := logger.Get()

	resourceURL := pollResourceURL
	if resourceURL == "" {
		resourceURL = pollURL
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), pollTimeout)
	defer cancel()

	client := transport.NewLiveClient()
	initiating := &transport.Request{
		OperationID: fmt.Sprintf("%s %s", pollMethod, pollURL),
		Method:      pollMethod,
		URL:         pollURL,
		Body:        pollBody,
	}

	l.Infof("Starting operation %s", initiating.OperationID)
	initialResp, err := client.Do(ctx, initiating)
	if err != nil {
		return fmt.Errorf("initiating request failed: %w", err)
	}

	s := strategy.SelectOrCompleted(
		initiating.OperationID,
		initialResp,
		resourceURL,
		serializer.NewJSONSerializer(),
	)

	spin := spinner.New(spinner.CharSets[14], 100*time.Millisecond)
	spin.Prefix = "Polling operation "
	_ = spin.Color("green")
	spin.Start()
	defer spin.Stop()

	finalResp, err := poller.New(client).PollUntilDone(ctx, s)
	spin.Stop()
	if err != nil {
		return err
	}

	if finalResp != nil {
		body, bodyErr := finalResp.BodyAsString(ctx)
		if bodyErr != nil {
			return bodyErr
		}
		fmt.Fprintln(cmd.OutOrStdout(), body)
	}
	l.Infof("Operation %s completed with state %q", initiating.OperationID, s.ProvisioningState())
	return nil
}
