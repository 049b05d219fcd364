package scheduledomain

// GenerateRoundRobin builds a single round-robin for teamCount seeds using
// the circle method. Odd pools get a bye each round. Game numbers run
// sequentially across rounds starting at 1.
func GenerateRoundRobin(teamCount int) []Pairing {
	if teamCount < 2 {
		return nil
	}

	seats := make([]int, 0, teamCount+1)
	for i := 1; i <= teamCount; i++ {
		seats = append(seats, i)
	}
	if teamCount%2 == 1 {
		seats = append(seats, 0) // bye
	}

	n := len(seats)
	rounds := n - 1
	pairings := make([]Pairing, 0, teamCount*(teamCount-1)/2)
	gameNumber := 1
	for round := 1; round <= rounds; round++ {
		for i := 0; i < n/2; i++ {
			home, away := seats[i], seats[n-1-i]
			if home == 0 || away == 0 {
				continue
			}
			if home > away {
				home, away = away, home
			}
			pairings = append(pairings, Pairing{
				TeamCount:  teamCount,
				Round:      round,
				GameNumber: gameNumber,
				T1Type:     SlotTeam,
				T1No:       home,
				T2Type:     SlotTeam,
				T2No:       away,
			})
			gameNumber++
		}
		// Keep seat 0 fixed and rotate the rest clockwise.
		last := seats[n-1]
		copy(seats[2:], seats[1:n-1])
		seats[1] = last
	}
	return pairings
}
