package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/netsim/config"
)

const pingScenario = `parameter stop 1500
node 0 1 EndSystemControl PingSender 1
node 1 1 EndSystemControl PingReceiver
link 0.0 1.0 8000 0 0 0
dumppacketstats 1400 all
`

var _ = Describe("run", func() {
	var (
		dir            string
		scenario       string
		stdout, stderr *bytes.Buffer
	)

	BeforeEach(func() {
		dir = GinkgoT().TempDir()
		scenario = filepath.Join(dir, "ping.txt")
		Expect(os.WriteFile(scenario, []byte(pingScenario), 0o600)).To(Succeed())

		stdout = new(bytes.Buffer)
		stderr = new(bytes.Buffer)
	})

	It("should run a scenario", func() {
		err := runScenario(runOptions{scenario: scenario}, stdout, stderr)

		Expect(err).NotTo(HaveOccurred())
		Expect(stdout.String()).To(ContainSubstring(
			"Pkt stats for node 0 time 1400 -  s 1 r 1 d 0 f 1"))
		Expect(stdout.String()).To(ContainSubstring(
			"simulation ended - last processing step with clock = 1400"))
		Expect(stderr.String()).To(ContainSubstring("run "))
	})

	It("should let the command line override parameters", func() {
		opts := runOptions{
			scenario:  scenario,
			stop:      1010,
			overrides: []string{"header_size=0"},
		}

		Expect(runScenario(opts, stdout, stderr)).To(Succeed())

		Expect(stdout.String()).To(ContainSubstring(
			"simulation ended - last processing step with clock = 1006"))
	})

	It("should refuse malformed overrides", func() {
		opts := runOptions{scenario: scenario, overrides: []string{"=3"}}

		Expect(runScenario(opts, stdout, stderr)).
			To(MatchError(ContainSubstring("want name=value")))
	})

	It("should log global events", func() {
		opts := runOptions{scenario: scenario, logEvents: true}

		Expect(runScenario(opts, stdout, stderr)).To(Succeed())

		Expect(stderr.String()).To(ContainSubstring("1400, "))
	})

	It("should write packet traces", func() {
		traceDir := filepath.Join(dir, "traces")
		opts := runOptions{
			scenario:  scenario,
			traceCSV:  true,
			traceDB:   true,
			traceJSON: true,
			traceDir:  traceDir,
		}

		Expect(runScenario(opts, stdout, stderr)).To(Succeed())

		csvFiles, err := filepath.Glob(filepath.Join(traceDir, "*.csv"))
		Expect(err).NotTo(HaveOccurred())
		Expect(csvFiles).To(HaveLen(1))

		content, err := os.ReadFile(csvFiles[0])
		Expect(err).NotTo(HaveOccurred())
		Expect(string(content)).To(ContainSubstring("1026,node 1,received,DATA"))

		dbFiles, err := filepath.Glob(filepath.Join(traceDir, "*.sqlite3"))
		Expect(err).NotTo(HaveOccurred())
		Expect(dbFiles).To(HaveLen(1))

		jsonFiles, err := filepath.Glob(filepath.Join(traceDir, "*.json"))
		Expect(err).NotTo(HaveOccurred())
		Expect(jsonFiles).To(HaveLen(1))
	})

	It("should report invalid scenarios", func() {
		bad := filepath.Join(dir, "bad.txt")
		Expect(os.WriteFile(bad,
			[]byte("node 0 1 EndSystemControl EmptyApp\n"+
				"node 0 1 EndSystemControl EmptyApp\n"), 0o600)).To(Succeed())

		err := runScenario(runOptions{scenario: bad}, stdout, stderr)

		Expect(err).To(MatchError(config.ErrInvalid))
	})
})

var _ = Describe("environment", func() {
	It("should read defaults from an env file", func() {
		path := filepath.Join(GinkgoT().TempDir(), ".env")
		Expect(os.WriteFile(path,
			[]byte(EnvStop+"=250\n"+EnvTraceDir+"=/tmp/netsim\n"), 0o600)).
			To(Succeed())
		DeferCleanup(func() {
			os.Unsetenv(EnvStop)
			os.Unsetenv(EnvTraceDir)
		})

		Expect(loadEnv(path)).To(Succeed())

		stop, err := envInt(EnvStop, 0)
		Expect(err).NotTo(HaveOccurred())
		Expect(stop).To(Equal(250))
		Expect(envString(EnvTraceDir, ".")).To(Equal("/tmp/netsim"))
	})

	It("should ignore a missing env file", func() {
		Expect(loadEnv(filepath.Join(GinkgoT().TempDir(), "none"))).
			To(Succeed())
	})

	It("should refuse numbers that are not", func() {
		GinkgoT().Setenv(EnvMonitorPort, "eighty")

		_, err := envInt(EnvMonitorPort, 0)

		Expect(err).To(MatchError(ContainSubstring("not a number")))
	})
})

var _ = Describe("validate", func() {
	It("should summarize valid scenarios", func() {
		path := filepath.Join(GinkgoT().TempDir(), "ping.txt")
		Expect(os.WriteFile(path, []byte(pingScenario), 0o600)).To(Succeed())
		out := new(bytes.Buffer)

		Expect(validateScenario(path, out)).To(Succeed())

		Expect(out.String()).To(HaveSuffix(": 2 nodes, 1 links, 1 events\n"))
	})
})

var _ = Describe("algorithms", func() {
	It("should list routing algorithms and applications", func() {
		out := new(bytes.Buffer)

		listAlgorithms(out)

		lines := strings.Split(strings.TrimSpace(out.String()), "\n")
		Expect(lines[0]).To(Equal("routing:"))
		Expect(lines).To(ContainElement("  FloodingSwitch"))
		Expect(lines).To(ContainElement("  PingReceiver"))
		Expect(lines).To(ContainElement("  FT21SenderGBN"))
	})
})
