package cfg

type MockLoader struct {
	// Config cho phép test ghi đè cấu hình trả về
	Config *Config
}

func NewMockLoader() (*MockLoader, error) {
	return &MockLoader{}, nil
}

func (yl *MockLoader) Load() (*Config, error) {
	if yl.Config != nil {
		return yl.Config, nil
	}
	return &Config{
		// App
		App: App{
			Name:    "git-stats",
			Version: "0.0.1",
		},

		// Mysql
		Mysql: Mysql{
			Host:                  "127.0.0.1",
			Password:              "root",
			Username:              "root",
			Port:                  "3306",
			Database:              "git_stats",
			MaxIdleConnection:     10,
			MaxOpenConnection:     100,
			MaxLifeTimeConnection: 3600,
		},

		// Kafka
		Kafka: Kafka{
			Brokers:      []string{"127.0.0.1:9092"},
			ProfileTopic: "git-stats.profiles",
			GroupId:      "git-stats-consumer",
		},

		// GithubApi
		GithubApi: GithubApi{
			AccessToken:       "",
			ApiUrl:            "https://api.github.com",
			GraphqlUrl:        "https://api.github.com/graphql",
			PerPage:           100,
			RequestsPerSecond: 10,
			ThrottleDelay:     200,
			RateLimitResetMin: 5,
		},

		// Stats
		Stats: Stats{
			EpochYear:       2008,
			FetchTimeoutSec: 300,
		},

		// Gateway
		Gateway: Gateway{
			BaseUrl:    "http://127.0.0.1:5000",
			TimeoutSec: 15,
		},

		// Server
		Server: Server{
			Port:             5000,
			RecentUsersLimit: 12,
		},
	}, nil
}
