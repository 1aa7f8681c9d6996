package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/spf13/pflag"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"github.com/rl1809/banko/internal/adapter/handler"
	"github.com/rl1809/banko/internal/core/domain"
)

func main() {
	addr := pflag.String("addr", "localhost:50051", "gRPC address of the banko server")
	username := pflag.String("username", os.Getenv("BANKO_ADMIN_USER"), "admin username")
	password := pflag.String("password", os.Getenv("BANKO_ADMIN_PASSWORD"), "admin password")
	requests := pflag.Int("requests", 30, "number of concurrent draw requests")
	perRequest := pflag.Int("per-request", 3, "numbers drawn per request")
	pflag.Parse()

	if *perRequest <= 0 {
		log.Fatalf("per-request must be positive, got %d", *perRequest)
	}

	conn, err := grpc.NewClient(*addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		log.Fatalf("failed to connect: %v", err)
	}
	defer conn.Close()
	client := handler.NewBankoServiceClient(conn)

	creds, err := structpb.NewStruct(map[string]interface{}{"username": *username, "password": *password})
	if err != nil {
		log.Fatalf("build credentials: %v", err)
	}
	token, err := client.Login(context.Background(), creds)
	if err != nil {
		log.Fatalf("login failed: %v", err)
	}
	ctx := metadata.AppendToOutgoingContext(context.Background(), handler.SessionTokenKey, token.GetValue())

	before, err := client.ListDrawn(ctx, &emptypb.Empty{})
	if err != nil {
		log.Fatalf("list drawn: %v", err)
	}
	remaining := domain.PoolSize - len(handler.Ints(before, "numbers"))

	// Counters
	var successCount atomic.Int32
	var failCount atomic.Int32
	var drawnCount atomic.Int32

	var wg sync.WaitGroup
	start := time.Now()

	for i := 0; i < *requests; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			resp, err := client.Draw(ctx, wrapperspb.Int32(int32(*perRequest)))
			if err != nil || !resp.GetFields()["success"].GetBoolValue() {
				failCount.Add(1)
				return
			}
			successCount.Add(1)
			drawnCount.Add(int32(len(handler.Ints(resp, "numbers"))))
		}()
	}

	wg.Wait()
	elapsed := time.Since(start)

	after, err := client.ListDrawn(ctx, &emptypb.Empty{})
	if err != nil {
		log.Fatalf("list drawn: %v", err)
	}
	all := handler.Ints(after, "numbers")

	expectedSuccess := min(*requests, remaining / *perRequest)

	fmt.Println("========== STRESS TEST RESULTS ==========")
	fmt.Printf("Remaining Before: %d\n", remaining)
	fmt.Printf("Total Requests:   %d x %d\n", *requests, *perRequest)
	fmt.Printf("Successful:       %d\n", successCount.Load())
	fmt.Printf("Failed:           %d\n", failCount.Load())
	fmt.Printf("Numbers Drawn:    %d\n", drawnCount.Load())
	fmt.Printf("Duration:         %v\n", elapsed)
	fmt.Println("==========================================")

	if int(successCount.Load()) == expectedSuccess {
		fmt.Printf("PASS: %d requests succeeded\n", expectedSuccess)
	} else {
		fmt.Printf("FAIL: expected %d successful requests, got %d\n", expectedSuccess, successCount.Load())
	}

	seen := make(map[int]bool, len(all))
	var duplicates, outOfRange int
	for _, v := range all {
		if seen[v] {
			duplicates++
		}
		if !domain.ValidValue(v) {
			outOfRange++
		}
		seen[v] = true
	}

	if duplicates == 0 && outOfRange == 0 {
		fmt.Printf("PASS: %d stored numbers, all distinct and within %d..%d\n", len(all), domain.MinValue, domain.MaxValue)
	} else {
		fmt.Printf("FAIL: %d duplicates, %d out of range\n", duplicates, outOfRange)
		os.Exit(1)
	}
}
