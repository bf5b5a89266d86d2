package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log"
	"math"
	"math/rand"
	"net/http"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var maxDevices int = 1000
var readingsPerDevice int = 3
var httpHostPort string = "127.0.0.1:8000"
var deviceDataSecret string = "super_secret_key"

var rnd *rand.Rand = rand.New(rand.NewSource(time.Now().UnixNano()))

func main() {
	deviceUIDs := make([]string, maxDevices)
	for i := 0; i < maxDevices; i++ {
		deviceUIDs[i] = uuid.NewString()
	}
	fmt.Printf("generated %v device UIDs\n", maxDevices)

	resp, err := http.Get(fmt.Sprintf("http://%s/healthz", httpHostPort))
	if err != nil {
		log.Fatal("Failed to connect to HTTP server:", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		log.Fatal("HTTP server not available")
	}

	fmt.Printf("http server verified\n")

	var startTime time.Time
	var usedTime time.Duration

	// first wave registers every device on its first reading
	startTime = time.Now()
	wg := sync.WaitGroup{}
	for i := 0; i < maxDevices; i++ {
		i := i
		wg.Add(1)
		go func() {
			postReading(deviceUIDs[i])
			fmt.Printf("\rregistered device %v", i)
			wg.Done()
		}()
	}
	wg.Wait()
	usedTime = time.Since(startTime)

	fmt.Printf(
		"\rfirst readings for %v devices: used time=%v seconds, throughput=%v reading/second\n",
		maxDevices, usedTime.Seconds(), float64(maxDevices)/usedTime.Seconds(),
	)

	// second wave floods readings for known devices
	startTime = time.Now()
	wg = sync.WaitGroup{}
	for i := 0; i < maxDevices; i++ {
		i := i
		wg.Add(1)
		go func() {
			for j := 0; j < readingsPerDevice; j++ {
				postReading(deviceUIDs[i])
			}
			wg.Done()
		}()
	}
	wg.Wait()
	usedTime = time.Since(startTime)

	fmt.Printf(
		"\n\rposted readings for %v devices: used time=%v seconds, throughput=%v reading/second\n",
		maxDevices, usedTime.Seconds(), float64(maxDevices*readingsPerDevice)/usedTime.Seconds(),
	)
}

func rndFloat64(min, max float64, decimal int) float64 {
	val := min + rnd.Float64()*(max-min)
	multiplier := float64(math.Pow10(decimal))
	return float64(math.Round(float64(val)*float64(multiplier))) / multiplier
}

func signReading(deviceUID string) string {
	claims := jwt.MapClaims{
		"device_id":   deviceUID,
		"sensor_type": "pms5003",
		"pm1":         rndFloat64(0.0, 50.0, 2),
		"pm2_5":       rndFloat64(0.0, 300.0, 2),
		"pm10":        rndFloat64(0.0, 500.0, 2),
		"time":        time.Now().UTC().Format(time.RFC3339),
		"exp":         time.Now().Add(time.Hour).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(deviceDataSecret))
	if err != nil {
		panic(err)
	}
	return signed
}

func postReading(deviceUID string) {
	payload := map[string]string{"data": signReading(deviceUID)}
	jsonData, _ := json.Marshal(payload)

	resp, err := http.Post(
		fmt.Sprintf("http://%s/v1/measurements", httpHostPort),
		"application/json", bytes.NewBuffer(jsonData))
	if err != nil {
		panic(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		panic(fmt.Sprintf("unexpected status %v for device %v", resp.StatusCode, deviceUID))
	}
}
