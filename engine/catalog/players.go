// Package catalog holds the static reference data the pipeline runs against:
// tracked players, approved merchandise terms, priority markets and the
// hand-curated keyword mappings used for entity-scoped lookups.
package catalog

import (
	"strings"

	"github.com/iconsports/demandscope/engine/domain"
)

// Players is the tracked player list. Order is significant: micro tests use
// the first MicroTestPlayers entries.
var Players = []domain.Entity{
	{Name: "Federico Valverde", Age: 26, Position: "CM", Team: "Real Madrid", Nationality: "Uruguay"},
	{Name: "Thibaut Courtois", Age: 32, Position: "GK", Team: "Real Madrid", Nationality: "Belgium"},
	{Name: "Dean Huijsen", Age: 19, Position: "CB", Team: "Bournemouth", Nationality: "Spain"},
	{Name: "Arda Guler", Age: 19, Position: "CAM", Team: "Real Madrid", Nationality: "Turkey"},
	{Name: "Pedri", Age: 22, Position: "CM", Team: "Barcelona", Nationality: "Spain"},
	{Name: "Gavi", Age: 20, Position: "CM", Team: "Barcelona", Nationality: "Spain"},
	{Name: "Raphinha", Age: 28, Position: "RW", Team: "Barcelona", Nationality: "Brazil"},
	{Name: "Florian Wirtz", Age: 21, Position: "CAM", Team: "Bayer Leverkusen", Nationality: "Germany"},
	{Name: "Jurgen Klopp", Age: 57, Position: "Manager", Team: "Retired", Nationality: "Germany"},
	{Name: "Virgil Van Dijk", Age: 33, Position: "CB", Team: "Liverpool", Nationality: "Netherlands"},
	{Name: "Alexis Mac Allister", Age: 26, Position: "CM", Team: "Liverpool", Nationality: "Argentina"},
	{Name: "Cody Gakpo", Age: 25, Position: "LW", Team: "Liverpool", Nationality: "Netherlands"},
	{Name: "Wataru Endo", Age: 31, Position: "CDM", Team: "Liverpool", Nationality: "Japan"},
	{Name: "Rio Ngumoha", Age: 16, Position: "LW", Team: "Liverpool", Nationality: "England"},
	{Name: "Martin Odegaard", Age: 26, Position: "CAM", Team: "Arsenal", Nationality: "Norway"},
	{Name: "Bukayo Saka", Age: 23, Position: "RW", Team: "Arsenal", Nationality: "England"},
	{Name: "Viktor Gyokeres", Age: 26, Position: "ST", Team: "Sporting CP", Nationality: "Sweden"},
	{Name: "Ethan Nwaneri", Age: 17, Position: "CAM", Team: "Arsenal", Nationality: "England"},
	{Name: "Max Dowman", Age: 14, Position: "CAM", Team: "Arsenal", Nationality: "England"},
	{Name: "James Maddison", Age: 28, Position: "CAM", Team: "Tottenham", Nationality: "England"},
	{Name: "Dominic Solanke", Age: 27, Position: "ST", Team: "Tottenham", Nationality: "England"},
	{Name: "Mohammed Kudus", Age: 24, Position: "RW", Team: "West Ham", Nationality: "Ghana"},
	{Name: "Dejan Kulusevski", Age: 24, Position: "RW", Team: "Tottenham", Nationality: "Sweden"},
	{Name: "Brennan Johnson", Age: 23, Position: "RW", Team: "Tottenham", Nationality: "Wales"},
	{Name: "Micky Van De Ven", Age: 23, Position: "CB", Team: "Tottenham", Nationality: "Netherlands"},
	{Name: "Hugo Lloris", Age: 38, Position: "GK", Team: "Retired", Nationality: "France"},
	{Name: "Cole Palmer", Age: 22, Position: "CAM", Team: "Chelsea", Nationality: "England"},
	{Name: "Enzo Fernandez", Age: 24, Position: "CM", Team: "Chelsea", Nationality: "Argentina"},
	{Name: "Reece James", Age: 25, Position: "RB", Team: "Chelsea", Nationality: "England"},
	{Name: "Joao Pedro", Age: 23, Position: "ST", Team: "Brighton", Nationality: "Brazil"},
	{Name: "Omar Marmoush", Age: 25, Position: "ST", Team: "Eintracht Frankfurt", Nationality: "Egypt"},
	{Name: "Jack Grealish", Age: 29, Position: "LW", Team: "Manchester City", Nationality: "England"},
	{Name: "Phil Foden", Age: 24, Position: "RW", Team: "Manchester City", Nationality: "England"},
	{Name: "Alexander Isak", Age: 25, Position: "ST", Team: "Newcastle", Nationality: "Sweden"},
	{Name: "Ollie Watkins", Age: 29, Position: "ST", Team: "Aston Villa", Nationality: "England"},
	{Name: "Morgan Rogers", Age: 22, Position: "CAM", Team: "Aston Villa", Nationality: "England"},
	{Name: "Eberechi Eze", Age: 26, Position: "CAM", Team: "Crystal Palace", Nationality: "England"},
	{Name: "Jean-Philippe Mateta", Age: 27, Position: "ST", Team: "Crystal Palace", Nationality: "France"},
	{Name: "Adam Wharton", Age: 20, Position: "CM", Team: "Crystal Palace", Nationality: "England"},
	{Name: "Marc Guehi", Age: 24, Position: "CB", Team: "Crystal Palace", Nationality: "England"},
	{Name: "Raul Jiminez", Age: 33, Position: "ST", Team: "Fulham", Nationality: "Mexico"},
	{Name: "Iliman Ndiaye", Age: 24, Position: "RW", Team: "Everton", Nationality: "Senegal"},
	{Name: "Jordan Pickford", Age: 30, Position: "GK", Team: "Everton", Nationality: "England"},
	{Name: "Kaoru Mitoma", Age: 27, Position: "LW", Team: "Brighton", Nationality: "Japan"},
	{Name: "Lewis Dunk", Age: 33, Position: "CB", Team: "Brighton", Nationality: "England"},
	{Name: "Daniel James", Age: 27, Position: "RW", Team: "Leeds", Nationality: "Wales"},
	{Name: "Wilfried Gnonto", Age: 21, Position: "RW", Team: "Leeds", Nationality: "Italy"},
	{Name: "Hwang Hee Chan", Age: 28, Position: "ST", Team: "Wolves", Nationality: "South Korea"},
	{Name: "Justin Kluivert", Age: 25, Position: "RW", Team: "Bournemouth", Nationality: "Netherlands"},
	{Name: "Jordan Henderson", Age: 34, Position: "CM", Team: "Ajax", Nationality: "England"},
	{Name: "Kyle Walker", Age: 34, Position: "RB", Team: "Manchester City", Nationality: "England"},
	{Name: "Chris Wood", Age: 33, Position: "ST", Team: "Nottingham Forest", Nationality: "New Zealand"},
	{Name: "Morgan Gibbs-White", Age: 24, Position: "CAM", Team: "Nottingham Forest", Nationality: "England"},
	{Name: "Jamal Musiala", Age: 21, Position: "CAM", Team: "Bayern Munich", Nationality: "Germany"},
	{Name: "Alphonso Davies", Age: 24, Position: "LB", Team: "Bayern Munich", Nationality: "Canada"},
	{Name: "Ousmane Dembele", Age: 27, Position: "RW", Team: "PSG", Nationality: "France"},
	{Name: "Khvicha Kvaratskhelia", Age: 23, Position: "LW", Team: "PSG", Nationality: "Georgia"},
	{Name: "Achraf Hakimi", Age: 26, Position: "RB", Team: "PSG", Nationality: "Morocco"},
	{Name: "Desire Doue", Age: 19, Position: "LW", Team: "PSG", Nationality: "France"},
	{Name: "Vitinha", Age: 24, Position: "CM", Team: "PSG", Nationality: "Portugal"},
	{Name: "Jonathan David", Age: 25, Position: "ST", Team: "Lille", Nationality: "Canada"},
	{Name: "Paulo Dybala", Age: 31, Position: "CAM", Team: "Roma", Nationality: "Argentina"},
	{Name: "Evan Ferguson", Age: 20, Position: "ST", Team: "Brighton", Nationality: "Ireland"},
	{Name: "Lucy Bronze", Age: 33, Position: "RB", Team: "Chelsea Women", Nationality: "England"},
	{Name: "Mary Earps", Age: 31, Position: "GK", Team: "PSG Women", Nationality: "England"},
	{Name: "Lauren James", Age: 23, Position: "RW", Team: "Chelsea Women", Nationality: "England"},
	{Name: "Toni Kroos", Age: 35, Position: "CM", Team: "Retired", Nationality: "Germany"},
	{Name: "Jürgen Klinsmann", Age: 60, Position: "Manager", Team: "Retired", Nationality: "Germany"},
	{Name: "Henrik Larsson", Age: 53, Position: "ST", Team: "Retired", Nationality: "Sweden"},
	{Name: "Marcelo Vieira", Age: 36, Position: "LB", Team: "Retired", Nationality: "Brazil"},
	{Name: "Nico Williams", Age: 22, Position: "RW", Team: "Athletic Bilbao", Nationality: "Spain"},
	{Name: "Jude Bellingham", Age: 21, Position: "CM", Team: "Real Madrid", Nationality: "England"},
	{Name: "Antoine Griezmann", Age: 33, Position: "ST", Team: "Atletico Madrid", Nationality: "France"},
	{Name: "Lee Kang-in", Age: 23, Position: "CAM", Team: "PSG", Nationality: "South Korea"},
	{Name: "Bradley Barcola", Age: 22, Position: "LW", Team: "PSG", Nationality: "France"},
	{Name: "Michael Olise", Age: 23, Position: "RW", Team: "Bayern Munich", Nationality: "France"},
	{Name: "Xavi Simons", Age: 21, Position: "CAM", Team: "RB Leipzig", Nationality: "Netherlands"},
	{Name: "Rafael Leão", Age: 25, Position: "LW", Team: "AC Milan", Nationality: "Portugal"},
	{Name: "Ademola Lookman", Age: 27, Position: "RW", Team: "Atalanta", Nationality: "Nigeria"},
	{Name: "Ivan Perišić", Age: 35, Position: "LW", Team: "PSV", Nationality: "Croatia"},
	{Name: "Gabriel Martinelli", Age: 23, Position: "LW", Team: "Arsenal", Nationality: "Brazil"},
	{Name: "Gabriel Batistuta", Age: 55, Position: "ST", Team: "Retired", Nationality: "Argentina"},
	{Name: "Robert Lewandowski", Age: 36, Position: "ST", Team: "Barcelona", Nationality: "Poland"},
	{Name: "Robin van Persie", Age: 41, Position: "ST", Team: "Retired", Nationality: "Netherlands"},
	{Name: "Nemanja Vidić", Age: 43, Position: "CB", Team: "Retired", Nationality: "Serbia"},
	{Name: "Joe Cole", Age: 43, Position: "CAM", Team: "Retired", Nationality: "England"},
	{Name: "Peter Crouch", Age: 43, Position: "ST", Team: "Retired", Nationality: "England"},
	{Name: "Jamie Vardy", Age: 38, Position: "ST", Team: "Leicester", Nationality: "England"},
	{Name: "Jermain Defoe", Age: 42, Position: "ST", Team: "Retired", Nationality: "England"},
	{Name: "Carles Puyol", Age: 46, Position: "CB", Team: "Retired", Nationality: "Spain"},
	{Name: "Arjen Robben", Age: 41, Position: "RW", Team: "Retired", Nationality: "Netherlands"},
	{Name: "Franck Ribéry", Age: 41, Position: "LW", Team: "Retired", Nationality: "France"},
	{Name: "Thomas Müller", Age: 35, Position: "CAM", Team: "Bayern Munich", Nationality: "Germany"},
	{Name: "Eden Hazard", Age: 34, Position: "LW", Team: "Retired", Nationality: "Belgium"},
	{Name: "David de Gea", Age: 34, Position: "GK", Team: "Retired", Nationality: "Spain"},
	{Name: "Dominik Szoboszlai", Age: 24, Position: "CAM", Team: "Liverpool", Nationality: "Hungary"},
	{Name: "Roberto Firmino", Age: 33, Position: "ST", Team: "Al Ahli", Nationality: "Brazil"},
	{Name: "Hidetoshi Nakata", Age: 48, Position: "CAM", Team: "Retired", Nationality: "Japan"},
	{Name: "Kyogo Furuhashi", Age: 30, Position: "ST", Team: "Celtic", Nationality: "Japan"},
	{Name: "Ji-Sung Park", Age: 43, Position: "CM", Team: "Retired", Nationality: "South Korea"},
	{Name: "Dani Olmo", Age: 26, Position: "CAM", Team: "Barcelona", Nationality: "Spain"},
	{Name: "Liam Delap", Age: 21, Position: "ST", Team: "Ipswich", Nationality: "England"},
	{Name: "Eduardo Camavinga", Age: 22, Position: "CM", Team: "Real Madrid", Nationality: "France"},
	{Name: "Destiny Udogie", Age: 22, Position: "LB", Team: "Tottenham", Nationality: "Italy"},
	{Name: "Joako Gvardiol", Age: 22, Position: "CB", Team: "Manchester City", Nationality: "Croatia"},
	{Name: "Nuno Mendes", Age: 22, Position: "LB", Team: "PSG", Nationality: "Portugal"},
	{Name: "Moises Caicedo", Age: 23, Position: "CDM", Team: "Chelsea", Nationality: "Ecuador"},
	{Name: "William Saliba", Age: 23, Position: "CB", Team: "Arsenal", Nationality: "France"},
	{Name: "Rodrygo", Age: 24, Position: "RW", Team: "Real Madrid", Nationality: "Brazil"},
	{Name: "Jeremie Frimpong", Age: 24, Position: "RWB", Team: "Bayer Leverkusen", Nationality: "Netherlands"},
	{Name: "Jadon Sancho", Age: 24, Position: "LW", Team: "Chelsea", Nationality: "England"},
	{Name: "Vini Jr.", Age: 24, Position: "LW", Team: "Real Madrid", Nationality: "Brazil"},
	{Name: "Aurelien Tchouameni", Age: 25, Position: "CDM", Team: "Real Madrid", Nationality: "France"},
	{Name: "Sandro Tonali", Age: 24, Position: "CM", Team: "Newcastle", Nationality: "Italy"},
	{Name: "Diogo Costa", Age: 25, Position: "GK", Team: "FC Porto", Nationality: "Portugal"},
	{Name: "Sven Botman", Age: 25, Position: "CB", Team: "Newcastle", Nationality: "Netherlands"},
	{Name: "Declan Rice", Age: 26, Position: "CDM", Team: "Arsenal", Nationality: "England"},
	{Name: "Kai Havertz", Age: 25, Position: "CAM", Team: "Arsenal", Nationality: "Germany"},
	{Name: "Gianluigi Donnarumma", Age: 25, Position: "GK", Team: "PSG", Nationality: "Italy"},
	{Name: "Alessandro Bastoni", Age: 25, Position: "CB", Team: "Inter Milan", Nationality: "Italy"},
	{Name: "Trent Alexander-Arnold", Age: 26, Position: "RB", Team: "Liverpool", Nationality: "England"},
	{Name: "Jarrod Bowen", Age: 28, Position: "RW", Team: "West Ham", Nationality: "England"},
	{Name: "Lautaro Martinez", Age: 27, Position: "ST", Team: "Inter Milan", Nationality: "Argentina"},
	{Name: "Nicolo Barella", Age: 27, Position: "CM", Team: "Inter Milan", Nationality: "Italy"},
	{Name: "John McGinn", Age: 30, Position: "CM", Team: "Aston Villa", Nationality: "Scotland"},}

// PlayerNames returns the names of all tracked players in catalog order.
func PlayerNames() []string {
	names := make([]string, len(Players))
	for i, p := range Players {
		names[i] = p.Name
	}
	return names
}

// FindPlayer looks up a player by name, case-insensitively.
func FindPlayer(name string) (domain.Entity, bool) {
	for _, p := range Players {
		if strings.EqualFold(p.Name, name) {
			return p, true
		}
	}
	return domain.Entity{}, false
}
