package main

import (
	"database/sql"
	"fmt"
	"log"
	"os"
	"strconv"

	_ "github.com/lib/pq"
)

// 楼盘数据体检脚本：上线前或手工修数后跑一遍
//
//	go run check_projects.go
//
// 检查项：slug 重复、孤儿单元、已发布但没坐标的项目、在售但价格为 0 的单元

func main() {
	dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		getEnv("DB_HOST", "localhost"),
		parseInt(getEnv("DB_PORT", "5432"), 5432),
		getEnv("DB_USER", "postgres"),
		getEnv("DB_PASSWORD", "postgres"),
		getEnv("DB_NAME", "summitly"),
		getEnv("DB_SSLMODE", "disable"),
	)

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		log.Fatalf("Failed to ping database: %v", err)
	}

	problems := 0

	// 1. 重复 slug（唯一约束在，但手工导数时见过先删约束再灌数的）
	fmt.Println("== 重复 slug ==")
	rows, err := db.Query(`
		SELECT slug, COUNT(*)
		FROM projects
		GROUP BY slug
		HAVING COUNT(*) > 1
	`)
	if err != nil {
		log.Fatalf("Failed to query duplicate slugs: %v", err)
	}
	for rows.Next() {
		var slug string
		var n int
		if err := rows.Scan(&slug, &n); err != nil {
			log.Fatalf("Failed to scan: %v", err)
		}
		fmt.Printf("  slug=%q 出现 %d 次\n", slug, n)
		problems++
	}
	closeRows(rows)

	// 2. 孤儿单元（units.project_id 指向不存在的项目）
	fmt.Println("== 孤儿单元 ==")
	rows, err = db.Query(`
		SELECT u.unit_id, u.unit_number, u.project_id
		FROM units u
		LEFT JOIN projects p ON p.project_id = u.project_id
		WHERE p.project_id IS NULL
	`)
	if err != nil {
		log.Fatalf("Failed to query orphan units: %v", err)
	}
	for rows.Next() {
		var unitID, unitNumber, projectID string
		if err := rows.Scan(&unitID, &unitNumber, &projectID); err != nil {
			log.Fatalf("Failed to scan: %v", err)
		}
		fmt.Printf("  unit %s (%s) -> 缺失项目 %s\n", unitID, unitNumber, projectID)
		problems++
	}
	closeRows(rows)

	// 3. 已发布但没坐标（地图页显示不出来，需要补跑 geocode）
	fmt.Println("== 已发布但缺坐标 ==")
	rows, err = db.Query(`
		SELECT project_id, name, city
		FROM projects
		WHERE status = 'published' AND (latitude IS NULL OR longitude IS NULL)
		ORDER BY city, name
	`)
	if err != nil {
		log.Fatalf("Failed to query ungeocoded projects: %v", err)
	}
	for rows.Next() {
		var projectID, name string
		var city sql.NullString
		if err := rows.Scan(&projectID, &name, &city); err != nil {
			log.Fatalf("Failed to scan: %v", err)
		}
		fmt.Printf("  %s  %-30s %s\n", projectID, name, nullStr(city))
		problems++
	}
	closeRows(rows)

	// 4. 在售但价格为 0 的单元（价目表导入漏填价格）
	fmt.Println("== 在售且价格为 0 ==")
	rows, err = db.Query(`
		SELECT u.unit_id, u.unit_number, p.name
		FROM units u
		JOIN projects p ON p.project_id = u.project_id
		WHERE u.available = true AND u.price = 0
		ORDER BY p.name, u.unit_number
	`)
	if err != nil {
		log.Fatalf("Failed to query zero-price units: %v", err)
	}
	for rows.Next() {
		var unitID, unitNumber, projectName string
		if err := rows.Scan(&unitID, &unitNumber, &projectName); err != nil {
			log.Fatalf("Failed to scan: %v", err)
		}
		fmt.Printf("  %s  unit %-10s @ %s\n", unitID, unitNumber, projectName)
		problems++
	}
	closeRows(rows)

	fmt.Println()
	if problems == 0 {
		fmt.Println("全部通过，没有发现问题")
	} else {
		fmt.Printf("共发现 %d 个问题\n", problems)
		os.Exit(1)
	}
}

func closeRows(rows *sql.Rows) {
	if err := rows.Err(); err != nil {
		log.Fatalf("Error iterating rows: %v", err)
	}
	rows.Close()
}

func nullStr(s sql.NullString) string {
	if s.Valid {
		return s.String
	}
	return "NULL"
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func parseInt(s string, def int) int {
	i, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return i
}
